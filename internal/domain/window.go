package domain

import "fmt"

// Window is a trailing chart lookback in days.
type Window int

const (
	Window7D  Window = 7
	Window30D Window = 30
	Window90D Window = 90

	DefaultWindow = Window90D
)

// ParseWindow accepts "7d", "30d" or "90d". An empty string yields the default.
func ParseWindow(s string) (Window, error) {
	switch s {
	case "":
		return DefaultWindow, nil
	case "7d":
		return Window7D, nil
	case "30d":
		return Window30D, nil
	case "90d":
		return Window90D, nil
	default:
		return 0, fmt.Errorf("invalid range %q: must be one of 7d, 30d, 90d", s)
	}
}

func (w Window) Days() int {
	return int(w)
}

func (w Window) String() string {
	return fmt.Sprintf("%dd", int(w))
}

// Label is the human readable name shown in the range selector.
func (w Window) Label() string {
	switch w {
	case Window7D:
		return "Last 7 days"
	case Window30D:
		return "Last 30 days"
	case Window90D:
		return "Last 3 months"
	default:
		return w.String()
	}
}
