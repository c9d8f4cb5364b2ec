package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specialistvlad/scriptgrid/internal/app"
	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/hcl_adapter"
	"github.com/specialistvlad/scriptgrid/internal/runner"
	"github.com/specialistvlad/scriptgrid/internal/tracing"
	"github.com/specialistvlad/scriptgrid/internal/watcher"
)

const (
	envPrefix         = "SCRIPTGRID"
	defaultConfigFile = "scriptgrid.yaml"
)

// flagKeys maps flag names to their configuration keys.
var flagKeys = map[string]string{
	"log-level":        "log_level",
	"log-format":       "log_format",
	"tick":             "tick",
	"healthcheck-port": "healthcheck_port",
	"history":          "history_path",
	"watch":            "watch",
	"watch-debounce":   "watch_debounce",
	"trace":            "tracing.enabled",
	"trace-exporter":   "tracing.exporter",
	"otlp-endpoint":    "tracing.otlp_endpoint",
}

// command holds the state shared by one invocation's commands.
type command struct {
	outW    io.Writer
	v       *viper.Viper
	cfgFile string
}

// NewRootCommand builds the scriptgrid command tree writing to outW.
func NewRootCommand(outW io.Writer) *cobra.Command {
	c := &command{outW: outW, v: viper.New()}

	root := &cobra.Command{
		Use:   "scriptgrid",
		Short: "Run a graph of node scripts incrementally",
		Long: `scriptgrid runs a graph of node folders. Each node is a script whose
inputs are joined to other nodes' outputs; a node re-runs whenever the data
it consumes changes.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initConfig,
	}
	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "",
		"config file (default: ./scriptgrid.yaml when present)")
	root.PersistentFlags().String("log-level", "info", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	root.PersistentFlags().String("log-format", "text", "Log output format: 'text' or 'json'.")

	root.AddCommand(
		c.runCommand(),
		c.validateCommand(),
		c.inspectCommand(),
		c.historyCommand(),
		c.monitorCommand(),
	)
	return root
}

// initConfig layers defaults, the config file, the environment and the
// flags of the executing command.
func (c *command) initConfig(cmd *cobra.Command, _ []string) error {
	c.setDefaults()
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	c.v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := c.v.BindPFlag(key, f); err != nil {
				return usageError(err)
			}
		}
	}

	switch {
	case c.cfgFile != "":
		c.v.SetConfigFile(c.cfgFile)
	case fileExists(defaultConfigFile):
		c.v.SetConfigFile(defaultConfigFile)
	default:
		return nil
	}
	if err := c.v.ReadInConfig(); err != nil {
		return usageError(fmt.Errorf("failed to read config file: %w", err))
	}
	return nil
}

func (c *command) setDefaults() {
	tc := tracing.DefaultConfig()
	c.v.SetDefault("log_level", "info")
	c.v.SetDefault("log_format", "text")
	c.v.SetDefault("tick", runner.DefaultInterval)
	c.v.SetDefault("healthcheck_port", 0)
	c.v.SetDefault("history_path", "")
	c.v.SetDefault("watch", false)
	c.v.SetDefault("watch_debounce", watcher.DefaultDebounce)
	c.v.SetDefault("tracing.enabled", tc.Enabled)
	c.v.SetDefault("tracing.exporter", tc.Exporter)
	c.v.SetDefault("tracing.otlp_endpoint", tc.OTLPEndpoint)
	c.v.SetDefault("tracing.sample_rate", tc.SampleRate)
	c.v.SetDefault("tracing.service_name", tc.ServiceName)
}

// newApp resolves the settings into an App for the project at paths.
func (c *command) newApp(paths []string) (*app.App, error) {
	s, err := c.settings()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	cfg, err := app.NewConfig(s.appConfig(paths))
	if err != nil {
		return nil, usageError(err)
	}
	return app.NewApp(c.outW, cfg, hcl_adapter.NewLoader()), nil
}

// loggerContext returns ctx carrying a logger built from the settings, for
// commands that do not create an App.
func (c *command) loggerContext(ctx context.Context) (context.Context, error) {
	s, err := c.settings()
	if err != nil {
		return nil, err
	}
	if _, err := app.NewConfig(s.appConfig([]string{"."})); err != nil {
		return nil, usageError(err)
	}
	return ctxlog.WithLogger(ctx, app.NewLogger(s.LogLevel, s.LogFormat, c.outW)), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
