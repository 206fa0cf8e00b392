// Package artifact provides the files flowing through build pipelines, a glob source reading
// them from a file system and a destination writing them to a directory.
package artifact
