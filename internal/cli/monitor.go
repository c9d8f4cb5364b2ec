package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/monitor"
)

func (c *command) monitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Follow a running host's notices over socket.io",
		Long: `Monitor connects to the status server of a 'scriptgrid run' started with
--healthcheck-port and prints every notice until interrupted. With --send it
first asks the host to pause, resume, toggle or stop the run.`,
		Args: cobra.NoArgs,
		RunE: c.monitor,
	}
	cmd.Flags().String("url", "http://localhost:8080", "Status server URL.")
	cmd.Flags().String("namespace", "", "socket.io namespace.")
	cmd.Flags().String("send", "", "Command to send after connecting: pause, resume, toggle or stop.")
	cmd.Flags().Bool("insecure", false, "Skip TLS certificate verification.")
	return cmd
}

func (c *command) monitor(cmd *cobra.Command, _ []string) error {
	send, _ := cmd.Flags().GetString("send")
	if send != "" && !slices.Contains(monitor.Commands, send) {
		return usageError(fmt.Errorf("%w: '%s'", monitor.ErrUnknownCommand, send))
	}
	url, _ := cmd.Flags().GetString("url")
	namespace, _ := cmd.Flags().GetString("namespace")
	insecure, _ := cmd.Flags().GetBool("insecure")

	ctx, err := c.loggerContext(cmd.Context())
	if err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)

	client, err := monitor.Dial(ctx, url, monitor.Options{Namespace: namespace, InsecureSkipVerify: insecure})
	if err != nil {
		return failure(err)
	}
	defer client.Close()
	logger.Info("👀 Monitoring.", "url", url, "sid", client.ID())

	if send != "" {
		if err := client.Send(send); err != nil {
			return failure(err)
		}
		logger.Info("Command sent.", "command", send)
	}

	if err := monitor.Print(ctx, client, c.outW); err != nil {
		return failure(err)
	}
	return nil
}
