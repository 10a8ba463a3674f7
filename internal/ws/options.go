package ws

import (
	"time"

	"github.com/saker-ai/classroom-avatar/internal/behavior"
	appconfig "github.com/saker-ai/classroom-avatar/internal/config"
	"github.com/saker-ai/classroom-avatar/internal/controller"
	"github.com/saker-ai/classroom-avatar/internal/session/fsm"
)

func controllerOptions(b appconfig.BehaviorConfig, character appconfig.CharacterConfig) controller.Options {
	clips := make(map[behavior.AnimationState]string, len(character.Clips))
	for name, clip := range character.Clips {
		state, err := fsm.Parse(name)
		if err != nil {
			continue
		}
		clips[state] = clip
	}
	return controller.Options{
		Locale:         character.Locale,
		PreferredVoice: character.PreferredVoice,
		Script: behavior.Script{
			Introduction: character.Introduction,
			Greeting:     character.Greeting,
			WaveRevert:   millis(b.WaveRevertMs),
		},
		Clips:                clips,
		JumpRevert:           millis(b.JumpRevertMs),
		MoveCooldown:         millis(b.MoveCooldownMs),
		PixelsPerUnit:        b.PixelsPerUnit,
		AvatarHalfWidth:      b.AvatarHalfWidth,
		ViewportWidth:        b.ViewportWidth,
		VoicePollInterval:    millis(b.VoicePollIntervalMs),
		VoicePollMaxAttempts: b.VoicePollMaxAttempts,
		LipSyncJitter:        b.LipSyncJitter,
	}
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
