package fsm

import (
	"errors"
	"testing"
)

func TestMachineDefault(t *testing.T) {
	m := New()
	if got := m.State(); got != StateIdle {
		t.Fatalf("state=%s, want %s", got, StateIdle)
	}
	if got := m.Transitions(); got != 0 {
		t.Fatalf("transitions=%d, want 0", got)
	}
}

func TestMachineWaveLifecycle(t *testing.T) {
	m := New()
	if err := m.Trigger(StateWave); err != nil {
		t.Fatalf("Trigger(wave) error: %v", err)
	}
	if got := m.State(); got != StateWave {
		t.Fatalf("state=%s, want %s", got, StateWave)
	}
	if err := m.Revert(); err != nil {
		t.Fatalf("Revert error: %v", err)
	}
	if got := m.State(); got != StateIdle {
		t.Fatalf("state=%s, want %s", got, StateIdle)
	}
	if got := m.Transitions(); got != 2 {
		t.Fatalf("transitions=%d, want 2", got)
	}
}

func TestMachineRejectsDirectSwitch(t *testing.T) {
	m := New()
	if err := m.Trigger(StateJump); err != nil {
		t.Fatalf("Trigger(jump) error: %v", err)
	}
	if err := m.Trigger(StateWave); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Trigger(wave) from jump error=%v, want ErrInvalidTransition", err)
	}
	if got := m.State(); got != StateJump {
		t.Fatalf("state=%s, want %s", got, StateJump)
	}
}

func TestMachineRejectsIdleTriggerAndIdleRevert(t *testing.T) {
	m := New()
	if err := m.Trigger(StateIdle); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Trigger(idle) error=%v, want ErrInvalidTransition", err)
	}
	if err := m.Revert(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Revert from idle error=%v, want ErrInvalidTransition", err)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse("dance"); err == nil {
		t.Fatal("Parse(dance) error=nil, want non-nil")
	}
	if got, err := Parse("wave"); err != nil || got != StateWave {
		t.Fatalf("Parse(wave)=%s,%v", got, err)
	}
}
