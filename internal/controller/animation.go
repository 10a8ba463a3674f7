package controller

import (
	"time"

	"go.uber.org/zap"

	"github.com/saker-ai/classroom-avatar/internal/behavior"
	"github.com/saker-ai/classroom-avatar/internal/metrics"
	"github.com/saker-ai/classroom-avatar/internal/session/fsm"
)

// playAnimation triggers a clip and schedules its single revert. A trigger
// while another clip is active reverts first, dropping the stale timer.
func (c *Controller) playAnimation(state behavior.AnimationState, revertAfter time.Duration) {
	if c.machine.State() != fsm.StateIdle {
		c.stopRevert()
		if err := c.machine.Revert(); err != nil {
			c.logger.Warn("animation revert failed", zap.Error(err))
		}
	}
	if err := c.machine.Trigger(state); err != nil {
		c.logger.Warn("animation trigger rejected", zap.Error(err))
		return
	}
	metrics.AnimationTransitions.WithLabelValues(string(state)).Inc()
	c.client.PlayAnimation(state, c.clip(state))

	c.revertGen++
	generation := c.revertGen
	c.revertTimer = c.clock.AfterFunc(revertAfter, func() {
		c.post(revertFired{generation: generation})
	})
	c.logger.Debug("animation started",
		zap.String("state", string(state)),
		zap.Duration("revert_after", revertAfter),
	)
}

func (c *Controller) onRevert(generation uint64) {
	if c.revertTimer == nil || generation != c.revertGen {
		return
	}
	c.revertTimer = nil
	if err := c.machine.Revert(); err != nil {
		c.logger.Warn("animation revert failed", zap.Error(err))
		return
	}
	metrics.AnimationTransitions.WithLabelValues(string(fsm.StateIdle)).Inc()
	c.client.PlayAnimation(fsm.StateIdle, c.clip(fsm.StateIdle))
}

func (c *Controller) stopRevert() {
	if c.revertTimer != nil {
		c.revertTimer.Stop()
		c.revertTimer = nil
	}
	c.revertGen++
}

// move applies a movement request unless the previous one is still in flight.
func (c *Controller) move(request behavior.MovementRequest) {
	if !c.cooldown.Allow(c.clock.Now()) {
		metrics.MovesRejected.Inc()
		c.logger.Debug("movement rejected during cooldown", zap.String("direction", string(request.Direction)))
		return
	}
	if request.Direction == behavior.DirectionJump {
		c.playAnimation(behavior.AnimationJump, c.opts.JumpRevert)
	}
	next := behavior.ClampMove(c.position, request, c.bounds)
	if next == c.position {
		return
	}
	c.position = next
	c.client.SetPosition(c.position, c.bounds)
}

func (c *Controller) onResize(width float64) {
	if width <= 0 {
		return
	}
	c.bounds = behavior.BoundsForViewport(width, c.opts.PixelsPerUnit, c.opts.AvatarHalfWidth)
	c.position = behavior.Position{X: c.bounds.Clamp(c.position.X)}
	c.client.SetPosition(c.position, c.bounds)
}
