package session

// State is the resolved authentication state of the client process.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateLoading       State = "LOADING"
	StateAnonymous     State = "ANONYMOUS"
	StateUnapproved    State = "UNAPPROVED"
	StateApproved      State = "APPROVED"
)

// validTransitions maps each state to the states it may move to. Any state
// may collapse to Anonymous (logout, token rejection).
var validTransitions = map[State][]State{
	StateUninitialized: {StateLoading, StateAnonymous},
	StateLoading:       {StateAnonymous, StateUnapproved, StateApproved},
	StateAnonymous:     {StateLoading, StateAnonymous},
	StateUnapproved:    {StateLoading, StateAnonymous},
	StateApproved:      {StateLoading, StateAnonymous},
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known state
func (s State) IsValid() bool {
	switch s {
	case StateUninitialized, StateLoading, StateAnonymous, StateUnapproved, StateApproved:
		return true
	}
	return false
}

// IsResolved reports whether the state carries a route-guard decision.
func (s State) IsResolved() bool {
	switch s {
	case StateAnonymous, StateUnapproved, StateApproved:
		return true
	}
	return false
}

// CanTransitionTo returns true if the transition from s to target is allowed
func (s State) CanTransitionTo(target State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
