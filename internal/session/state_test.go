package session

import "testing"

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"uninitialized", StateUninitialized, true},
		{"loading", StateLoading, true},
		{"anonymous", StateAnonymous, true},
		{"unapproved", StateUnapproved, true},
		{"approved", StateApproved, true},
		{"unknown state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsResolved(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateUninitialized, false},
		{StateLoading, false},
		{StateAnonymous, true},
		{StateUnapproved, true},
		{StateApproved, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsResolved(); got != tt.expected {
				t.Errorf("State.IsResolved() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{"initial load", StateUninitialized, StateLoading, true},
		{"initial without token", StateUninitialized, StateAnonymous, true},
		{"load resolves approved", StateLoading, StateApproved, true},
		{"load resolves unapproved", StateLoading, StateUnapproved, true},
		{"load resolves anonymous", StateLoading, StateAnonymous, true},
		{"login from anonymous", StateAnonymous, StateLoading, true},
		{"logout from approved", StateApproved, StateAnonymous, true},
		{"logout from unapproved", StateUnapproved, StateAnonymous, true},
		{"no direct approval", StateUninitialized, StateApproved, false},
		{"no load from load", StateLoading, StateLoading, false},
		{"no resurrecting", StateAnonymous, StateApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}
