// Package steps provides the build steps a configuration can refer to by kind.
//
// A step kind is a factory turning the options of a configured step into a pipeline stage over
// files. The default registry holds every built-in kind: gzip, lz4, fingerprint, markdown, jsonc,
// header and filter.
package steps
