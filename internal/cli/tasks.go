package cli

import (
	"os"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-warlock/internal/scheduler"
	"github.com/askiada/go-warlock/internal/telemetry"
	"github.com/askiada/go-warlock/pkg/pipeline/drawer"
)

type taskInfo struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Dependencies []string `json:"dependencies"`
}

func newTasksCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List tasks and their dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := g.load(cmd)
			if err != nil {
				return err
			}

			jobs, _, err := project.Jobs(telemetry.FromContext(cmd.Context()))
			if err != nil {
				return err
			}

			infos := make([]taskInfo, 0, len(jobs))
			rows := make([][]string, 0, len(jobs))

			for _, job := range jobs {
				info := taskInfo{Name: job.Name, Kind: "pipeline", Dependencies: slices.Clone(job.Dependencies)}
				if job.Run == nil {
					info.Kind = "alias"
				}

				if info.Dependencies == nil {
					info.Dependencies = []string{}
				}

				infos = append(infos, info)
				rows = append(rows, []string{info.Name, info.Kind, strings.Join(info.Dependencies, ", ")})
			}

			return g.output(cmd).Print([]string{"NAME", "KIND", "DEPENDENCIES"}, rows, infos)
		},
	}
}

func newGraphCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "graph [FILE]",
		Short: "Write the task graph as DOT",
		Long:  "Write the task graph as DOT, to FILE or to stdout. Pipelines are drawn as boxes, alias tasks as ellipses.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := g.load(cmd)
			if err != nil {
				return err
			}

			jobs, _, err := project.Jobs(telemetry.FromContext(cmd.Context()))
			if err != nil {
				return err
			}

			gra, err := scheduler.Graph(jobs)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return drawer.WriteDOT(gra, cmd.OutOrStdout(), drawer.GraphAttribute("rankdir", "LR"))
			}

			file, err := os.Create(args[0])
			if err != nil {
				return errors.Wrapf(err, "unable to create %s", args[0])
			}
			defer file.Close()

			err = drawer.WriteDOT(gra, file, drawer.GraphAttribute("rankdir", "LR"))
			if err != nil {
				return err
			}

			g.output(cmd).Success("task graph written to " + args[0])

			return file.Close()
		},
	}
}
