package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/scriptgrid/internal/history"
)

type runView struct {
	Run   history.Run       `yaml:"run"`
	Nodes []history.NodeRun `yaml:"nodes"`
}

func (c *command) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List recorded runs, or show one run's node executions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.history,
	}
	cmd.Flags().String("history", "", "SQLite file runs are recorded in.")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list. 0 lists all.")
	return cmd
}

func (c *command) history(cmd *cobra.Command, args []string) error {
	ctx, err := c.loggerContext(cmd.Context())
	if err != nil {
		return err
	}
	s, err := c.settings()
	if err != nil {
		return err
	}
	if s.HistoryPath == "" {
		return usageError(errors.New("a history file is required: use --history or SCRIPTGRID_HISTORY_PATH"))
	}

	store, err := history.Open(ctx, s.HistoryPath)
	if err != nil {
		return failure(err)
	}
	defer store.Close()

	if len(args) == 1 {
		run, err := store.Run(ctx, args[0])
		if err != nil {
			return failure(err)
		}
		nodes, err := store.NodeRuns(ctx, run.ID)
		if err != nil {
			return failure(err)
		}
		enc := yaml.NewEncoder(c.outW)
		enc.SetIndent(2)
		if err := enc.Encode(runView{Run: run, Nodes: nodes}); err != nil {
			return failure(err)
		}
		return enc.Close()
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return failure(err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(c.outW, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(c.outW, "%-36s  %-9s  %s  %10s  %s\n",
			r.ID, r.Status, r.Started.Local().Format(time.DateTime), r.Duration().Round(time.Millisecond), r.Project)
	}
	return nil
}
