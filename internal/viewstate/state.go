// Package viewstate holds the single piece of mutable view state and the
// reducer that moves it between the closed splash, the one-shot video and
// the open letter.
package viewstate

// State is the visual currently mounted
type State int

const (
	Closed State = iota
	PlayingMedia
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case PlayingMedia:
		return "playing-media"
	case Open:
		return "open"
	default:
		return "unknown"
	}
}

// Event drives a transition
type Event int

const (
	OpenRequested Event = iota
	MediaEnded
	MediaFailed
	CloseRequested
)

func (e Event) String() string {
	switch e {
	case OpenRequested:
		return "open-requested"
	case MediaEnded:
		return "media-ended"
	case MediaFailed:
		return "media-failed"
	case CloseRequested:
		return "close-requested"
	default:
		return "unknown"
	}
}

// Reduce returns the state that follows s after e. Events that have no
// meaning in s leave it unchanged. A media failure advances exactly like a
// completed video so a broken asset never strands the view.
func Reduce(s State, e Event) State {
	switch s {
	case Closed:
		if e == OpenRequested {
			return PlayingMedia
		}
	case PlayingMedia:
		if e == MediaEnded || e == MediaFailed {
			return Open
		}
	case Open:
		if e == CloseRequested {
			return Closed
		}
	}
	return s
}
