// Package manager keeps the pipelines of a build and turns them into task descriptors.
//
// Every pipeline becomes one task named after it, depending on the tasks listed by the pipeline
// and on the tasks of the pipelines joining it. Running the task of a joining pipeline splices
// its collected output into the join target, so the target has to run after it.
package manager
