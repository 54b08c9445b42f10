package ring

// State is the visibility state of one ring slot.
type State uint8

const (
	// Empty slots hold no live element.
	Empty State = iota
	// Hidden slots hold an element that pop and shadow reads cannot see.
	Hidden
	// Visible slots hold an element no shadow reader has seen yet.
	Visible
	// Visited slots hold an element at least one shadow reader has seen.
	Visited

	numStates
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	case Visited:
		return "visited"
	default:
		return "invalid"
	}
}

// Event is an operation applied to a slot.
type Event uint8

const (
	// Push writes a visible element.
	Push Event = iota
	// PushHidden writes a hidden element.
	PushHidden
	// Unhide reveals a hidden element.
	Unhide
	// ShadowRead peeks at the element without removing it.
	ShadowRead
	// Pop removes the element.
	Pop
	// PopIfVisited removes the element only if it was shadow read.
	PopIfVisited

	numEvents
)

func (e Event) String() string {
	switch e {
	case Push:
		return "push"
	case PushHidden:
		return "push-hidden"
	case Unhide:
		return "unhide"
	case ShadowRead:
		return "shadow-read"
	case Pop:
		return "pop"
	case PopIfVisited:
		return "pop-if-visited"
	default:
		return "invalid"
	}
}

// invalid marks a refused transition in the table.
const invalid = numStates

// transitions[state][event] is the next state, or invalid. A push overwrites
// the slot in place, so it is accepted from any state.
var transitions = [numStates][numEvents]State{
	Empty: {
		Push:         Visible,
		PushHidden:   Hidden,
		Unhide:       invalid,
		ShadowRead:   invalid,
		Pop:          invalid,
		PopIfVisited: invalid,
	},
	Hidden: {
		Push:         Visible,
		PushHidden:   Hidden,
		Unhide:       Visible,
		ShadowRead:   invalid,
		Pop:          invalid,
		PopIfVisited: invalid,
	},
	Visible: {
		Push:         Visible,
		PushHidden:   Hidden,
		Unhide:       invalid,
		ShadowRead:   Visited,
		Pop:          Empty,
		PopIfVisited: invalid,
	},
	Visited: {
		Push:         Visible,
		PushHidden:   Hidden,
		Unhide:       invalid,
		ShadowRead:   Visited,
		Pop:          Empty,
		PopIfVisited: Empty,
	},
}

// Next returns the state after applying e to s, and whether the transition
// is allowed.
func Next(s State, e Event) (State, bool) {
	if s >= numStates || e >= numEvents {
		return s, false
	}
	n := transitions[s][e]
	if n == invalid {
		return s, false
	}
	return n, true
}

// MetaSize is the per-slot metadata stored right after each payload:
// a visited byte and a hidden byte.
const MetaSize = 2

const (
	metaVisited = 0
	metaHidden  = 1
)

// decode reads the state of a live slot from its metadata.
func decode(meta []byte) State {
	switch {
	case meta[metaHidden] != 0:
		return Hidden
	case meta[metaVisited] != 0:
		return Visited
	default:
		return Visible
	}
}

// encode writes s into slot metadata. Empty clears the visited flag and
// leaves hidden as it was, which is always clear for a slot that could be
// removed.
func encode(meta []byte, s State) {
	switch s {
	case Empty:
		meta[metaVisited] = 0
	case Hidden:
		meta[metaVisited] = 0
		meta[metaHidden] = 1
	case Visible:
		meta[metaVisited] = 0
		meta[metaHidden] = 0
	case Visited:
		meta[metaVisited] = 1
		meta[metaHidden] = 0
	}
}
