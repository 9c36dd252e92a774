// Package statemachine provides a small thread-safe finite state machine
// with transitions declared as pure data.
//
// States and events are plain strings, which keeps machine definitions
// readable and makes the transition table independently testable:
//
//	m := statemachine.New("disconnected",
//		statemachine.Transition{From: "disconnected", To: "connecting", Event: "connect"},
//		statemachine.Transition{From: "connecting", To: "connected", Event: "open"},
//		statemachine.Transition{From: "connected", To: "disconnected", Event: "close"},
//	)
//
//	if _, err := m.Fire("connect"); err != nil {
//		// event not valid in the current state
//	}
//
// Hooks registered with OnTransition observe every successful transition
// and run synchronously after the state change is applied.
package statemachine
