package resource

// State is the form state of one resource page.
type State int

const (
	// Browsing means no form is open.
	Browsing State = iota
	// Creating means the draft will become a new record.
	Creating
	// Editing means the draft will overwrite the EditingTarget.
	Editing
)

func (s State) String() string {
	switch s {
	case Browsing:
		return "browsing"
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// MarshalText lets State appear as a string in JSON views.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FormOpen reports whether a draft is active.
func (s State) FormOpen() bool {
	return s == Creating || s == Editing
}

type transition struct {
	from, to State
}

// transitions lists every allowed page state change. Field input is a
// self-loop on Creating/Editing and is checked with FormOpen instead.
var transitions = []transition{
	{Browsing, Creating},
	{Browsing, Editing},
	{Creating, Editing},
	{Editing, Editing},
	{Creating, Browsing},
	{Editing, Browsing},
}

func canTransition(from, to State) bool {
	for _, t := range transitions {
		if t.from == from && t.to == to {
			return true
		}
	}
	return false
}

func allowedFrom(from State) []State {
	var out []State
	for _, t := range transitions {
		if t.from == from {
			out = append(out, t.to)
		}
	}
	return out
}

func checkTransition(from, to State) error {
	if canTransition(from, to) {
		return nil
	}
	return &TransitionError{From: from, To: to, Allowed: allowedFrom(from)}
}
