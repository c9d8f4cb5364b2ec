package monitor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/specialistvlad/scriptgrid/internal/events"
)

var (
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"})
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0550AE", Dark: "#58A6FF"})
	readyStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}).Bold(true)
	pauseStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"})
	nodeStyle    = lipgloss.NewStyle().Bold(true)
)

// stateStyle picks the colour for a node or run state.
func stateStyle(state string) lipgloss.Style {
	switch state {
	case "running", "run":
		return runningStyle
	case "ready":
		return readyStyle
	case "exception":
		return errorStyle
	case "pause":
		return pauseStyle
	default:
		return mutedStyle
	}
}

// Format renders one notice as a single line.
func Format(msg events.Message) string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render(shortID(msg.RunID)))
	b.WriteByte(' ')

	switch msg.Type {
	case events.NodeState:
		fmt.Fprintf(&b, "%s %s", nodeStyle.Render(msg.Node), stateStyle(msg.NodeState).Render(msg.NodeState))
		if msg.Version > 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" v%d", msg.Version)))
		}
		if msg.Error != "" {
			b.WriteString(" " + errorStyle.Render(msg.Error))
		}
	case events.NodeOutput:
		b.WriteString(msg.Line)
	case events.RunState:
		fmt.Fprintf(&b, "run %s", stateStyle(msg.RunState).Render(msg.RunState))
	case events.RunCompleted:
		b.WriteString(readyStyle.Render("run completed"))
	case events.RunFailed:
		b.WriteString(errorStyle.Render("run failed: " + msg.Error))
	default:
		b.WriteString(mutedStyle.Render(string(msg.Type)))
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Print writes every notice from c to w until ctx is done.
func Print(ctx context.Context, c *Client, w io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-c.Notices():
			if _, err := fmt.Fprintln(w, Format(msg)); err != nil {
				return err
			}
		}
	}
}
