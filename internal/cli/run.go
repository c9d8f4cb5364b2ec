package cli

import (
	"github.com/spf13/cobra"

	"github.com/specialistvlad/scriptgrid/internal/runner"
	"github.com/specialistvlad/scriptgrid/internal/tracing"
	"github.com/specialistvlad/scriptgrid/internal/watcher"
)

func (c *command) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [PROJECT...]",
		Short: "Run a project until every node has settled",
		Long: `Run loads the project files (a single .hcl file or a directory of them,
the current directory by default), builds the graph and runs it. With --watch
the project is reloaded and run again after every change.`,
		RunE: c.run,
	}

	f := cmd.Flags()
	f.Duration("tick", runner.DefaultInterval, "Interval between reconciliation passes.")
	f.Int("healthcheck-port", 0, "Port for the HTTP status server. 0 is disabled.")
	f.String("history", "", "SQLite file runs are recorded in. Empty disables history.")
	f.Bool("watch", false, "Re-run after project or metadata files change.")
	f.Duration("watch-debounce", watcher.DefaultDebounce, "Quiet period before a change triggers a reload.")
	f.Bool("trace", false, "Enable OpenTelemetry tracing.")
	f.String("trace-exporter", tracing.ExporterStdout, "Trace exporter: 'none', 'stdout' or 'otlp'.")
	f.String("otlp-endpoint", tracing.DefaultOTLPEndpoint, "OTLP gRPC endpoint for the otlp exporter.")
	return cmd
}

func (c *command) run(cmd *cobra.Command, args []string) error {
	a, err := c.newApp(args)
	if err != nil {
		return err
	}
	if err := a.Run(cmd.Context()); err != nil {
		return failure(err)
	}
	return nil
}
