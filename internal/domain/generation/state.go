package generation

import "fmt"

// State is a step of a single generation request.
type State string

const (
	StateIdle       State = "idle"
	StateAssembling State = "assembling"
	StateBuilt      State = "built"
	StateSent       State = "sent"
	StateExtracted  State = "extracted"
	StateParsed     State = "parsed"
	StatePersisted  State = "persisted"
	StateFailed     State = "failed"
)

var nextState = map[State]State{
	StateIdle:       StateAssembling,
	StateAssembling: StateBuilt,
	StateBuilt:      StateSent,
	StateSent:       StateExtracted,
	StateExtracted:  StateParsed,
	StateParsed:     StatePersisted,
}

func (s State) Terminal() bool {
	return s == StatePersisted || s == StateFailed
}

// Tracker enforces Idle -> Assembling -> Built -> Sent -> Extracted -> Parsed
// -> Persisted, with Failed reachable from any non-terminal state.
type Tracker struct {
	state        State
	kind         Kind
	history      []State
	onTransition func(from, to State)
}

func NewTracker(onTransition func(from, to State)) *Tracker {
	return &Tracker{
		state:        StateIdle,
		history:      []State{StateIdle},
		onTransition: onTransition,
	}
}

func (t *Tracker) State() State {
	return t.state
}

// FailureKind is set once the tracker is in StateFailed.
func (t *Tracker) FailureKind() Kind {
	return t.kind
}

func (t *Tracker) History() []State {
	out := make([]State, len(t.history))
	copy(out, t.history)
	return out
}

// Advance moves to the next state. Skipping or going back is an error.
func (t *Tracker) Advance(to State) error {
	if expected, ok := nextState[t.state]; !ok || expected != to {
		return fmt.Errorf("illegal generation transition %s -> %s", t.state, to)
	}
	t.move(to)
	return nil
}

// Fail records the failure kind unless the request already finished.
func (t *Tracker) Fail(kind Kind) {
	if t.state.Terminal() {
		return
	}
	t.kind = kind
	t.move(StateFailed)
}

func (t *Tracker) move(to State) {
	from := t.state
	t.state = to
	t.history = append(t.history, to)
	if t.onTransition != nil {
		t.onTransition(from, to)
	}
}
