// Package model provides the data structures shared by the pipeline package and its hooks.
// It defines the step descriptions handed to hooks, the join descriptor and insertion points used
// to splice one pipeline into another, the task names consumed by schedulers, and the hook
// interface implemented by measures, drawers and loggers.
package model
