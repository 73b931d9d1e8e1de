package checkout

type State string

const (
	StateIdle         State = "idle"
	StateAwaitingAuth State = "awaiting_auth"
	StateProcessing   State = "processing"
	StateCompleted    State = "completed"
)

// IsTerminal reports whether the state ends an attempt. A new attempt may
// start from any state except Processing.
func (s State) IsTerminal() bool {
	return s == StateAwaitingAuth || s == StateCompleted
}

func (s State) CanStart() bool {
	return s != StateProcessing
}

func (s State) String() string {
	return string(s)
}
