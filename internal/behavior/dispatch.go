package behavior

import "time"

// AnimationState is the clip currently requested from the renderer.
type AnimationState string

const (
	AnimationIdle AnimationState = "idle"
	AnimationWave AnimationState = "wave"
	AnimationJump AnimationState = "jump"
)

// Default response sentences.
const (
	DefaultIntroduction = "Hello, I am your AI teacher. Let's learn something new today!"
	DefaultGreeting     = "Hello there!"
	DefaultWaveRevert   = 5 * time.Second
)

// AnimationRequest asks for a clip that reverts to idle after RevertAfter.
type AnimationRequest struct {
	State       AnimationState
	RevertAfter time.Duration
}

// Action is the outcome of dispatching one intent. Zero fields are no-ops.
type Action struct {
	Animation *AnimationRequest
	Utterance string
	Movement  *MovementRequest
}

// Empty reports whether the action does nothing.
func (a Action) Empty() bool {
	return a.Animation == nil && a.Utterance == "" && a.Movement == nil
}

// Script holds the fixed sentences a character speaks.
type Script struct {
	Introduction string
	Greeting     string
	WaveRevert   time.Duration
}

// DefaultScript returns the stock classroom teacher script.
func DefaultScript() Script {
	return Script{
		Introduction: DefaultIntroduction,
		Greeting:     DefaultGreeting,
		WaveRevert:   DefaultWaveRevert,
	}
}

// Dispatcher turns intents into actions.
type Dispatcher struct {
	script Script
}

// NewDispatcher creates a dispatcher. Empty script fields fall back to defaults.
func NewDispatcher(script Script) *Dispatcher {
	defaults := DefaultScript()
	if script.Introduction == "" {
		script.Introduction = defaults.Introduction
	}
	if script.Greeting == "" {
		script.Greeting = defaults.Greeting
	}
	if script.WaveRevert <= 0 {
		script.WaveRevert = defaults.WaveRevert
	}
	return &Dispatcher{script: script}
}

// Script returns the effective script.
func (d *Dispatcher) Script() Script {
	return d.script
}

// Dispatch maps an intent to its action.
func (d *Dispatcher) Dispatch(intent Intent) Action {
	switch intent {
	case IntentIntroduce:
		return Action{Utterance: d.script.Introduction}
	case IntentGreet:
		return Action{
			Animation: &AnimationRequest{State: AnimationWave, RevertAfter: d.script.WaveRevert},
			Utterance: d.script.Greeting,
		}
	case IntentJump:
		return Action{Movement: &MovementRequest{Direction: DirectionJump}}
	case IntentMoveLeft:
		return Action{Movement: &MovementRequest{Direction: DirectionLeft}}
	case IntentMoveRight:
		return Action{Movement: &MovementRequest{Direction: DirectionRight}}
	default:
		return Action{}
	}
}
