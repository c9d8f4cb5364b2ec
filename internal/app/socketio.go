package app

import (
	"context"
	"net/http"

	"github.com/zishang520/socket.io/v2/socket"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/events"
	"github.com/specialistvlad/scriptgrid/internal/pubsub"
	"github.com/specialistvlad/scriptgrid/internal/runner"
)

// NoticeEvent is the socket.io event every bus notice is broadcast as.
const NoticeEvent = "notice"

// noticeHandler creates the socket.io server. Connected clients receive
// every notice and may send the runner commands by name.
func (a *App) noticeHandler(ctx context.Context) http.Handler {
	logger := ctxlog.FromContext(ctx)
	io := socket.NewServer(nil, nil)

	io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		logger.Debug("Monitor connected.", "sid", client.Id())

		for _, cmd := range []runner.Command{runner.CmdPause, runner.CmdResume, runner.CmdToggle, runner.CmdStop} {
			client.On(cmd.String(), func(...any) {
				a.sendCommand(ctx, cmd)
			})
		}
		client.On("disconnect", func(...any) {
			logger.Debug("Monitor disconnected.", "sid", client.Id())
		})
	})

	// Monitors may miss output lines but not state changes.
	sub := a.bus.Subscribe(ctx, pubsub.Lossless(events.NodeOutput))
	go func() {
		for ev := range sub {
			io.Emit(NoticeEvent, events.MessageFrom(ev))
		}
	}()

	return io.ServeHandler(nil)
}

func (a *App) sendCommand(ctx context.Context, cmd runner.Command) {
	logger := ctxlog.FromContext(ctx)
	r := a.Runner()
	if r == nil {
		logger.Warn("Command ignored, no runner.", "command", cmd.String())
		return
	}
	if !r.Send(cmd) {
		logger.Warn("Command dropped, queue full.", "command", cmd.String())
		return
	}
	logger.Debug("Command received from monitor.", "command", cmd.String())
}
