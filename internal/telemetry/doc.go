// Package telemetry sets up structured logging with slog and provides a pipeline hook writing
// a log record for every run, composed stage and failure.
package telemetry
