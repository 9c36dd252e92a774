package statemachine

import (
	"errors"
	"fmt"
)

// ErrNoTransition is the sentinel matched by errors.Is for any rejected event.
var ErrNoTransition = errors.New("no transition available")

// ErrNoTransitionAvailable carries the state/event pair that had no
// registered transition.
type ErrNoTransitionAvailable struct {
	State State
	Event Event
}

func (e *ErrNoTransitionAvailable) Error() string {
	return fmt.Sprintf("no transition available from state %q for event %q", e.State, e.Event)
}

func (e *ErrNoTransitionAvailable) Unwrap() error {
	return ErrNoTransition
}

func NewErrNoTransition(state State, event Event) *ErrNoTransitionAvailable {
	return &ErrNoTransitionAvailable{State: state, Event: event}
}
