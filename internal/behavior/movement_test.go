package behavior

import (
	"testing"
	"time"
)

func TestClampMoveLeftFromOrigin(t *testing.T) {
	got := ClampMove(Position{X: 0}, MovementRequest{Direction: DirectionLeft}, Bounds{Min: -10, Max: 10})
	if got.X != -2 {
		t.Fatalf("x=%v, want -2", got.X)
	}
}

func TestClampMoveIdempotentAtBounds(t *testing.T) {
	bounds := Bounds{Min: -10, Max: 10}
	if got := ClampMove(Position{X: bounds.Max}, MovementRequest{Direction: DirectionRight}, bounds); got.X != bounds.Max {
		t.Fatalf("x=%v, want %v", got.X, bounds.Max)
	}
	if got := ClampMove(Position{X: bounds.Min}, MovementRequest{Direction: DirectionLeft}, bounds); got.X != bounds.Min {
		t.Fatalf("x=%v, want %v", got.X, bounds.Min)
	}
	if got := ClampMove(Position{X: 9}, MovementRequest{Direction: DirectionRight}, bounds); got.X != bounds.Max {
		t.Fatalf("x=%v, want %v", got.X, bounds.Max)
	}
}

func TestClampMoveJumpKeepsX(t *testing.T) {
	got := ClampMove(Position{X: 3}, MovementRequest{Direction: DirectionJump}, Bounds{Min: -10, Max: 10})
	if got.X != 3 {
		t.Fatalf("x=%v, want 3", got.X)
	}
}

func TestClampMoveOutOfBoundsStartIsPulledIn(t *testing.T) {
	got := ClampMove(Position{X: 20}, MovementRequest{Direction: DirectionJump}, Bounds{Min: -1, Max: 1})
	if got.X != 1 {
		t.Fatalf("x=%v, want 1", got.X)
	}
}

func TestBoundsForViewport(t *testing.T) {
	got := BoundsForViewport(1600, 100, 1)
	if got.Min != -7 || got.Max != 7 {
		t.Fatalf("bounds=%+v, want [-7,7]", got)
	}
	if got := BoundsForViewport(100, 100, 1); got.Min != 0 || got.Max != 0 {
		t.Fatalf("narrow bounds=%+v, want [0,0]", got)
	}
	if got := BoundsForViewport(0, 100, 1); got != (Bounds{}) {
		t.Fatalf("zero width bounds=%+v, want zero", got)
	}
}

func TestCooldownRejectsWhileInFlight(t *testing.T) {
	c := NewCooldown(3 * time.Second)
	start := time.Unix(1000, 0)
	if !c.Allow(start) {
		t.Fatal("first Allow=false, want true")
	}
	if c.Allow(start.Add(2999 * time.Millisecond)) {
		t.Fatal("Allow during window=true, want false")
	}
	if !c.Allow(start.Add(3 * time.Second)) {
		t.Fatal("Allow after window=false, want true")
	}
}

func TestCooldownSetWindowKeepsRunningWindow(t *testing.T) {
	c := NewCooldown(3 * time.Second)
	start := time.Unix(1000, 0)
	if !c.Allow(start) {
		t.Fatal("first Allow=false, want true")
	}
	c.SetWindow(time.Second)
	if c.Allow(start.Add(2 * time.Second)) {
		t.Fatal("Allow inside running window=true, want false")
	}
	if !c.Allow(start.Add(3 * time.Second)) {
		t.Fatal("Allow after running window=false, want true")
	}
	if c.Allow(start.Add(3*time.Second + 999*time.Millisecond)) {
		t.Fatal("Allow inside new window=true, want false")
	}
	if !c.Allow(start.Add(4 * time.Second)) {
		t.Fatal("Allow after new window=false, want true")
	}
}
