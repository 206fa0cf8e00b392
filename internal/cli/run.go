package cli

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/askiada/go-warlock/internal/scheduler"
	"github.com/askiada/go-warlock/internal/telemetry"
)

func newRunCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "run [TASK...]",
		Short: "Run tasks and their dependencies",
		Long: `Run tasks and their dependencies.

Without arguments the "default" task runs, or every pipeline when no such task is declared.
A pipeline task may be named with or without its "$$" prefix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := g.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := telemetry.FromContext(ctx)

			jobs, results, err := project.Jobs(logger)
			if err != nil {
				return err
			}

			sched := scheduler.New(
				scheduler.WithConcurrency(g.concurrency),
				scheduler.WithLogger(logger),
			)

			start := time.Now()
			runErr := sched.Run(ctx, jobs, project.Targets(jobs, args)...)

			if g.metricsPath != "" {
				if err := prometheus.WriteToTextfile(g.metricsPath, project.Metrics); err != nil {
					logger.Error("unable to write metrics", "path", g.metricsPath, "error", err)
				}
			}

			if runErr != nil {
				return runErr
			}

			list := results.List()

			var total uint64

			rows := make([][]string, 0, len(list))
			for _, res := range list {
				total += res.Bytes
				rows = append(rows, []string{
					res.Task,
					humanize.Comma(int64(res.Files)),
					humanize.Bytes(res.Bytes),
					res.Elapsed.Round(time.Millisecond).String(),
				})
			}

			out := g.output(cmd)

			err = out.Print([]string{"TASK", "FILES", "SIZE", "ELAPSED"}, rows, list)
			if err != nil {
				return errors.Wrap(err, "unable to print results")
			}

			out.Success("built " + humanize.Bytes(total) + " in " + time.Since(start).Round(time.Millisecond).String())

			return nil
		},
	}
}
