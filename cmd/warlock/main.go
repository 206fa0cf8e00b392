// Command warlock runs the build pipelines declared in a configuration file.
//
// Usage:
//
//	warlock [--config FILE] [--phase PHASE] <command> [args]
//
// Commands:
//
//	run    Run tasks and their dependencies
//	tasks  List tasks and their dependencies
//	graph  Write the task graph as DOT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/askiada/go-warlock/internal/cli"
)

// version is set at build time through ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCmd(version).ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
