package fsm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/saker-ai/classroom-avatar/internal/behavior"
)

// ErrInvalidTransition is returned for edges the animation graph does not have.
var ErrInvalidTransition = errors.New("invalid animation transition")

// State is the animation currently owned by a session.
type State = behavior.AnimationState

const (
	StateIdle = behavior.AnimationIdle
	StateWave = behavior.AnimationWave
	StateJump = behavior.AnimationJump
)

// Machine is the animation state machine. Idle is initial; Idle->Wave and
// Idle->Jump are triggered, Wave->Idle and Jump->Idle are reverts. There is
// no terminal state.
type Machine struct {
	mu          sync.RWMutex
	state       State
	transitions uint64
}

// New creates a state machine in idle.
func New() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Transitions returns how many transitions have been applied.
func (m *Machine) Transitions() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transitions
}

// Trigger moves from idle into wave or jump.
func (m *Machine) Trigger(target State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch target {
	case StateWave, StateJump:
	default:
		return fmt.Errorf("%w: trigger %s", ErrInvalidTransition, target)
	}
	if m.state != StateIdle {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, target)
	}
	m.state = target
	m.transitions++
	return nil
}

// Revert returns to idle from wave or jump.
func (m *Machine) Revert() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateIdle {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, StateIdle)
	}
	m.state = StateIdle
	m.transitions++
	return nil
}

// Parse validates a state name.
func Parse(name string) (State, error) {
	switch State(name) {
	case StateIdle, StateWave, StateJump:
		return State(name), nil
	default:
		return "", fmt.Errorf("invalid state: %s", name)
	}
}
