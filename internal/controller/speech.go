package controller

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/saker-ai/classroom-avatar/internal/behavior"
	"github.com/saker-ai/classroom-avatar/internal/metrics"
)

type activeUtterance struct {
	id      string
	text    string
	cues    []behavior.SpeechCue
	timers  []clockwork.Timer
	started bool
}

func (u *activeUtterance) stop() {
	for _, timer := range u.timers {
		timer.Stop()
	}
	u.timers = nil
}

// speak cancels whatever is playing and submits a new utterance.
func (c *Controller) speak(text string) error {
	if !c.caps.SpeechSynthesis {
		metrics.SpeechAborted.WithLabelValues("capability").Inc()
		c.logger.Warn("speech skipped", zap.Error(ErrCapabilityUnavailable))
		return ErrCapabilityUnavailable
	}
	if c.voice == nil {
		metrics.SpeechAborted.WithLabelValues("no_voice").Inc()
		c.logger.Warn("speech skipped", zap.Error(ErrNoVoiceAvailable))
		return ErrNoVoiceAvailable
	}

	c.cancelSpeech()

	u := &activeUtterance{
		id:   uuid.NewString(),
		text: text,
		cues: behavior.Schedule(text),
	}
	c.active = u
	lang := c.voice.Lang
	if lang == "" {
		lang = c.opts.Locale
	}
	metrics.Utterances.Inc()
	c.client.Speak(Utterance{ID: u.id, Text: text, Voice: c.voice.Name, Lang: lang})
	c.logger.Info("utterance submitted",
		zap.String("utterance_id", u.id),
		zap.String("voice", c.voice.Name),
		zap.Int("cues", len(u.cues)),
		zap.Int("duration_ms", behavior.ScheduleDuration(text)),
	)
	return nil
}

func (c *Controller) cancelSpeech() {
	c.client.CancelSpeech()
	if c.active == nil {
		return
	}
	prev := c.active
	prev.stop()
	c.active = nil
	if prev.started {
		c.client.SetMouth(MouthFrame{UtteranceID: prev.id})
	}
}

func (c *Controller) onSynthesisStarted(id string) {
	u := c.active
	if u == nil || u.id != id || u.started {
		c.logger.Debug("stale synthesis start", zap.String("utterance_id", id))
		return
	}
	u.started = true
	for i, cue := range u.cues {
		index := i
		u.timers = append(u.timers,
			c.clock.AfterFunc(time.Duration(cue.OpenAtMs)*time.Millisecond, func() {
				c.post(cueFired{utteranceID: id, index: index, open: true})
			}),
			c.clock.AfterFunc(time.Duration(cue.CloseAtMs)*time.Millisecond, func() {
				c.post(cueFired{utteranceID: id, index: index, open: false})
			}),
		)
	}
}

func (c *Controller) onCue(m cueFired) {
	if c.active == nil || c.active.id != m.utteranceID {
		return
	}
	frame := MouthFrame{UtteranceID: m.utteranceID, Open: m.open}
	if m.open {
		frame.Value = 1
		// Cosmetic secondary morph; timing never depends on it.
		if c.opts.LipSyncJitter {
			frame.Jitter = rand.Float64()
		}
	}
	c.client.SetMouth(frame)
}

func (c *Controller) onSynthesisEnded(id string) {
	u := c.active
	if u == nil || u.id != id {
		c.logger.Debug("stale synthesis end", zap.String("utterance_id", id))
		return
	}
	u.stop()
	c.active = nil
	c.client.SetMouth(MouthFrame{UtteranceID: id})
	c.logger.Info("utterance finished", zap.String("utterance_id", id))
}

func (c *Controller) onVoices(voices []Voice) {
	c.voices = voices
	c.voice = selectVoice(voices, c.opts.PreferredVoice, c.opts.Locale)
	if c.voice != nil {
		c.stopVoicePoll()
		c.logger.Info("voice selected",
			zap.String("voice", c.voice.Name),
			zap.String("lang", c.voice.Lang),
			zap.Int("available", len(voices)),
		)
		return
	}
	if c.caps.SpeechSynthesis {
		c.startVoicePoll()
	}
}

// startVoicePoll asks the client for its voice list on a fixed interval until
// one arrives.
func (c *Controller) startVoicePoll() {
	if c.pollTimer != nil {
		return
	}
	c.pollAttempts = 0
	c.pollVoices()
}

func (c *Controller) pollVoices() {
	c.client.RequestVoices()
	c.pollAttempts++
	c.pollGen++
	generation := c.pollGen
	c.pollTimer = c.clock.AfterFunc(c.opts.VoicePollInterval, func() {
		c.post(voicePollFired{generation: generation})
	})
}

func (c *Controller) onVoicePoll(generation uint64) {
	if c.pollTimer == nil || generation != c.pollGen {
		return
	}
	c.pollTimer = nil
	if c.voice != nil {
		return
	}
	if limit := c.opts.VoicePollMaxAttempts; limit > 0 && c.pollAttempts >= limit {
		c.logger.Warn("voice list still empty; giving up",
			zap.Int("attempts", c.pollAttempts),
			zap.Error(ErrNoVoiceAvailable),
		)
		return
	}
	c.pollVoices()
}

func (c *Controller) stopVoicePoll() {
	if c.pollTimer != nil {
		c.pollTimer.Stop()
		c.pollTimer = nil
	}
	c.pollGen++
}

func selectVoice(voices []Voice, preferred string, locale string) *Voice {
	if len(voices) == 0 {
		return nil
	}
	if preferred != "" {
		for i := range voices {
			if strings.EqualFold(voices[i].Name, preferred) {
				return &voices[i]
			}
		}
	}
	if locale != "" {
		for i := range voices {
			if strings.EqualFold(voices[i].Lang, locale) {
				return &voices[i]
			}
		}
	}
	return &voices[0]
}
