// Package cli implements the warlock command line.
//
// # Overview
//
// The command line reads a configuration file, turns its pipelines into tasks and runs them with
// a dependency aware scheduler. Alias tasks from the configuration group other tasks.
//
// # Commands
//
//   - run [TASK...]: runs the tasks and their dependencies. Without arguments the "default" alias
//     runs, or every pipeline when there is no such alias. A pipeline may be named without its
//     "$$" task prefix.
//   - tasks: lists the tasks and their dependencies.
//   - graph [FILE]: writes the task graph as DOT.
//
// Data is written to stdout, logs to stderr, so the output can be piped:
//
//	warlock tasks --json | jq .
package cli
