package statemachine

import (
	"sync"
)

// State is a named state in the machine.
type State string

// Event triggers a transition between states.
type Event string

// Transition defines a state change triggered by an event.
type Transition struct {
	From  State
	To    State
	Event Event
}

// Hook observes a completed transition. Hooks run synchronously inside
// Fire, after the state change is applied.
type Hook func(from, to State, event Event)

// Machine is a thread-safe finite state machine with transitions declared
// as pure data. Transition lookup is O(1) via a nested map keyed by
// [fromState][event].
type Machine struct {
	initial     State
	current     State
	transitions map[State]map[Event]State
	hooks       []Hook
	mu          sync.RWMutex
}

// New creates a machine in the given initial state with the provided
// transitions. Later declarations for the same (from, event) pair win.
func New(initial State, transitions ...Transition) *Machine {
	m := &Machine{
		initial:     initial,
		current:     initial,
		transitions: make(map[State]map[Event]State),
	}
	for _, t := range transitions {
		if _, ok := m.transitions[t.From]; !ok {
			m.transitions[t.From] = make(map[Event]State)
		}
		m.transitions[t.From][t.Event] = t.To
	}
	return m
}

// OnTransition registers a hook invoked after every successful transition.
func (m *Machine) OnTransition(h Hook) {
	if h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is currently in the given state.
func (m *Machine) Is(s State) bool {
	return m.Current() == s
}

// CanFire reports whether the event has a transition from the current state.
func (m *Machine) CanFire(event Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.transitions[m.current][event]
	return ok
}

// Fire applies the event. It returns the new state, or the unchanged
// current state and ErrNoTransition when no transition matches.
func (m *Machine) Fire(event Event) (State, error) {
	m.mu.Lock()

	to, ok := m.transitions[m.current][event]
	if !ok {
		current := m.current
		m.mu.Unlock()
		return current, NewErrNoTransition(current, event)
	}

	from := m.current
	m.current = to
	hooks := make([]Hook, len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.Unlock()

	// Hooks run outside the lock so they may query the machine.
	for _, h := range hooks {
		h(from, to, event)
	}

	return to, nil
}

// Reset returns the machine to its initial state without firing hooks.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}
