// Package config reads warlock configuration files.
//
// A configuration declares pipelines, each built from a file glob, a list of steps and an optional
// destination directory, plus alias tasks grouping other tasks. Files are YAML, or JSON extended
// with comments and trailing commas (JSONC). Pipelines and tasks keep the order of the document.
//
// The typical flow:
//
//  1. ReadFile or Parse: document bytes → Config, with ${NAME} references expanded
//  2. Validate: structural checks, returning every issue found
package config
