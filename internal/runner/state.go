package runner

// State is the overall run state.
type State int32

const (
	StateStop State = iota
	StateRun
	StatePause
)

func (s State) String() string {
	switch s {
	case StateStop:
		return "stop"
	case StateRun:
		return "run"
	case StatePause:
		return "pause"
	default:
		return "unknown"
	}
}

// Command is a request from another goroutine, applied by Serve.
type Command int

const (
	CmdPause Command = iota + 1
	CmdResume
	CmdToggle
	CmdStop
)

func (c Command) String() string {
	switch c {
	case CmdPause:
		return "pause"
	case CmdResume:
		return "resume"
	case CmdToggle:
		return "toggle"
	case CmdStop:
		return "stop"
	default:
		return "unknown"
	}
}

// ParseCommand maps a command name to a Command.
func ParseCommand(s string) (Command, bool) {
	for _, c := range []Command{CmdPause, CmdResume, CmdToggle, CmdStop} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}
