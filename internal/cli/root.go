package cli

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-warlock/internal/config"
	"github.com/askiada/go-warlock/internal/telemetry"
)

// DefaultConfigPath is the configuration file read when --config is not set.
const DefaultConfigPath = "warlock.yaml"

type globals struct {
	configPath  string
	phase       string
	logLevel    string
	logFormat   string
	drawDir     string
	metricsPath string
	concurrency int
	jsonOutput  bool
}

// NewRootCmd returns the warlock command and its sub commands.
func NewRootCmd(version string) *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "warlock",
		Short:         "warlock builds files through pipelines of steps",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", DefaultConfigPath, "Configuration file (.yaml, .yml, .jsonc or .json)")
	flags.StringVar(&g.phase, "phase", "", "Phase to run, overrides the configuration")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error (default $LOG_LEVEL or info)")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: text or json (default $LOG_FORMAT or text)")
	flags.StringVar(&g.drawDir, "draw", "", "Directory receiving a DOT drawing of every pipeline run")
	flags.StringVar(&g.metricsPath, "metrics", "", "File receiving the prometheus metrics of the run")
	flags.IntVar(&g.concurrency, "concurrency", runtime.NumCPU(), "Maximum number of tasks running at the same time, 0 for no limit")
	flags.BoolVar(&g.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		newRunCmd(g),
		newTasksCmd(g),
		newGraphCmd(g),
	)

	return rootCmd
}

func (g *globals) output(cmd *cobra.Command) *Output {
	return NewOutput(g.jsonOutput, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// load sets the logger of the command up and builds the project of the configuration file.
func (g *globals) load(cmd *cobra.Command) (*Project, error) {
	logger, err := telemetry.SetupLogger(cmd.ErrOrStderr(), g.logLevel, g.logFormat)
	if err != nil {
		return nil, err
	}

	cmd.SetContext(telemetry.WithLogger(cmd.Context(), logger))

	cfg, err := config.ReadFile(g.configPath)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load config")
	}

	return Build(cfg, BuildOptions{
		Phase:   g.phase,
		DrawDir: g.drawDir,
		Logger:  logger,
	})
}
