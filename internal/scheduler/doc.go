// Package scheduler runs jobs once their dependencies succeeded.
//
// Jobs are started in a stable topological order and run concurrently up to a limit. The first
// failure cancels every job still waiting or running.
package scheduler
