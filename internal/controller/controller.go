// Package controller runs one avatar's behaviour loop. All state is owned by
// a single goroutine that consumes messages in arrival order; timers only
// post messages back into the queue.
package controller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/saker-ai/classroom-avatar/internal/behavior"
	"github.com/saker-ai/classroom-avatar/internal/metrics"
	"github.com/saker-ai/classroom-avatar/internal/session/fsm"
)

const inboxSize = 64

// Options configures a controller.
type Options struct {
	Locale               string
	PreferredVoice       string
	Script               behavior.Script
	Clips                map[behavior.AnimationState]string
	JumpRevert           time.Duration
	MoveCooldown         time.Duration
	PixelsPerUnit        float64
	AvatarHalfWidth      float64
	ViewportWidth        float64
	VoicePollInterval    time.Duration
	VoicePollMaxAttempts int
	LipSyncJitter        bool
	OnInteraction        func(Interaction)
}

// DefaultOptions returns the stock classroom settings.
func DefaultOptions() Options {
	return Options{
		Locale:            "en-US",
		Script:            behavior.DefaultScript(),
		JumpRevert:        5 * time.Second,
		MoveCooldown:      3 * time.Second,
		PixelsPerUnit:     100,
		AvatarHalfWidth:   1,
		ViewportWidth:     1280,
		VoicePollInterval: time.Second,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.Locale == "" {
		o.Locale = defaults.Locale
	}
	if o.JumpRevert <= 0 {
		o.JumpRevert = defaults.JumpRevert
	}
	if o.MoveCooldown <= 0 {
		o.MoveCooldown = defaults.MoveCooldown
	}
	if o.PixelsPerUnit <= 0 {
		o.PixelsPerUnit = defaults.PixelsPerUnit
	}
	if o.AvatarHalfWidth < 0 {
		o.AvatarHalfWidth = defaults.AvatarHalfWidth
	}
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = defaults.ViewportWidth
	}
	if o.VoicePollInterval <= 0 {
		o.VoicePollInterval = defaults.VoicePollInterval
	}
	return o
}

// Controller owns the avatar state of one client.
type Controller struct {
	logger *zap.Logger
	clock  clockwork.Clock
	client Client

	inbox     chan Message
	done      chan struct{}
	closeOnce sync.Once

	opts       Options
	dispatcher *behavior.Dispatcher
	machine    *fsm.Machine
	cooldown   *behavior.Cooldown

	caps     CapabilitiesReported
	position behavior.Position
	bounds   behavior.Bounds

	revertTimer clockwork.Timer
	revertGen   uint64

	voices       []Voice
	voice        *Voice
	pollTimer    clockwork.Timer
	pollGen      uint64
	pollAttempts int

	active *activeUtterance
}

// New creates a controller. A nil clock uses wall time.
func New(logger *zap.Logger, clock clockwork.Clock, client Client, opts Options) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	opts = opts.withDefaults()
	c := &Controller{
		logger:     logger,
		clock:      clock,
		client:     client,
		inbox:      make(chan Message, inboxSize),
		done:       make(chan struct{}),
		opts:       opts,
		dispatcher: behavior.NewDispatcher(opts.Script),
		machine:    fsm.New(),
		cooldown:   behavior.NewCooldown(opts.MoveCooldown),
	}
	c.bounds = behavior.BoundsForViewport(opts.ViewportWidth, opts.PixelsPerUnit, opts.AvatarHalfWidth)
	return c
}

// Post enqueues a message for the loop.
func (c *Controller) Post(msg Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case <-c.done:
		return ErrClosed
	case c.inbox <- msg:
		return nil
	}
}

func (c *Controller) post(msg Message) {
	_ = c.Post(msg)
}

// Run consumes messages until ctx is cancelled or Close is called.
func (c *Controller) Run(ctx context.Context) error {
	defer c.shutdown()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case msg := <-c.inbox:
			c.handle(msg)
		}
	}
}

// Close stops the loop. Pending timers are stopped by Run on exit.
func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Animation returns the current animation state.
func (c *Controller) Animation() behavior.AnimationState {
	return c.machine.State()
}

func (c *Controller) shutdown() {
	c.Close()
	c.stopRevert()
	c.stopVoicePoll()
	if c.active != nil {
		c.active.stop()
		c.active = nil
	}
}

func (c *Controller) handle(msg Message) {
	switch m := msg.(type) {
	case CapabilitiesReported:
		c.onCapabilities(m)
	case TranscriptReceived:
		c.onTranscript(m.Text)
	case RecognitionFailed:
		c.logger.Warn("speech recognition failed", zap.String("reason", m.Reason))
	case ListenRequested:
		c.onListen()
	case SpeakRequested:
		text := strings.TrimSpace(m.Text)
		if text == "" {
			text = c.dispatcher.Script().Introduction
		}
		_ = c.speak(text)
	case SynthesisStarted:
		c.onSynthesisStarted(m.UtteranceID)
	case SynthesisEnded:
		c.onSynthesisEnded(m.UtteranceID)
	case VoicesChanged:
		c.onVoices(m.Voices)
	case ViewportResized:
		c.onResize(m.Width)
	case ScriptChanged:
		c.onScriptChanged(m.Options)
	case revertFired:
		c.onRevert(m.generation)
	case cueFired:
		c.onCue(m)
	case voicePollFired:
		c.onVoicePoll(m.generation)
	default:
		c.logger.Debug("controller unknown message", zap.Any("message", msg))
	}
}

func (c *Controller) onCapabilities(m CapabilitiesReported) {
	c.caps = m
	c.logger.Info("client capabilities",
		zap.Bool("speech_recognition", m.SpeechRecognition),
		zap.Bool("speech_synthesis", m.SpeechSynthesis),
		zap.Float64("viewport_width", m.ViewportWidth),
	)
	if !m.SpeechRecognition {
		c.logger.Warn("speech recognition disabled", zap.Error(ErrCapabilityUnavailable))
	}
	if !m.SpeechSynthesis {
		c.logger.Warn("speech synthesis disabled", zap.Error(ErrCapabilityUnavailable))
	}

	c.client.PlayAnimation(c.machine.State(), c.clip(c.machine.State()))
	if m.ViewportWidth > 0 {
		c.onResize(m.ViewportWidth)
	} else {
		c.client.SetPosition(c.position, c.bounds)
	}
	if m.SpeechSynthesis && c.voice == nil {
		c.startVoicePoll()
	}
}

func (c *Controller) onTranscript(raw string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return
	}
	intent := behavior.Interpret(text)
	metrics.Intents.WithLabelValues(string(intent)).Inc()
	action := c.dispatcher.Dispatch(intent)
	c.logger.Info("transcript interpreted",
		zap.String("transcript", text),
		zap.String("intent", string(intent)),
	)

	if action.Animation != nil {
		c.playAnimation(action.Animation.State, action.Animation.RevertAfter)
	}
	response := ""
	if action.Utterance != "" {
		if err := c.speak(action.Utterance); err == nil {
			response = action.Utterance
		}
	}
	if action.Movement != nil {
		c.move(*action.Movement)
	}

	if c.opts.OnInteraction != nil {
		c.opts.OnInteraction(Interaction{Transcript: text, Intent: intent, Response: response})
	}
}

func (c *Controller) onListen() {
	if !c.caps.SpeechRecognition {
		c.logger.Warn("listen ignored", zap.Error(ErrCapabilityUnavailable))
		return
	}
	c.client.StartRecognition(c.opts.Locale)
}

func (c *Controller) onScriptChanged(opts Options) {
	onInteraction := c.opts.OnInteraction
	opts = opts.withDefaults()
	if opts.OnInteraction == nil {
		opts.OnInteraction = onInteraction
	}
	c.opts = opts
	c.dispatcher = behavior.NewDispatcher(opts.Script)
	c.cooldown.SetWindow(opts.MoveCooldown)
	c.onVoices(c.voices)
	c.client.PlayAnimation(c.machine.State(), c.clip(c.machine.State()))
}

func (c *Controller) clip(state behavior.AnimationState) string {
	if name, ok := c.opts.Clips[state]; ok && name != "" {
		return name
	}
	return string(state)
}
