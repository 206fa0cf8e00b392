// Package pipeline provides named pipelines processing a stream of build artifacts.
//
// A pipeline starts from a source stream, runs the artifacts through an ordered list of steps and
// optionally hands them to a destination stage. Steps are registered by name and placed at the
// beginning or the end of the step order, or right before or after another step. The step order
// is only turned into an executable chain when the pipeline runs, so steps can be added, replaced
// or spliced in by another pipeline between two runs.
//
// A stage comes in two flavours. A transform stage is a function over the lazily pulled stream
// and runs in the goroutine of its consumer. A duplex stage reads from and writes to channels and
// runs in its own goroutines, optionally with several workers sharing its input. Both flavours can
// be mixed freely in the same pipeline.
//
// The first error raised by a stage ends the chain: the stage stops pulling from the previous
// stages, the error is attributed to the stage with a StageError and reported once to the caller
// of Run and to the hooks of the pipeline. A failed run never reports an end.
//
// Steps may be restricted to a phase. When a pipeline runs for a phase, every step restricted to
// another phase is left out of the chain for that run only.
package pipeline
