package ws

import (
	"github.com/saker-ai/classroom-avatar/internal/behavior"
	"github.com/saker-ai/classroom-avatar/internal/controller"
	"github.com/saker-ai/classroom-avatar/internal/protocol"
)

// StartRecognition and the methods below forward controller commands to the
// browser as JSON frames.
func (s *session) StartRecognition(lang string) {
	s.sendJSON(startRecognitionFrame{Type: protocol.TypeStartRecognition, Lang: lang})
}

func (s *session) CancelSpeech() {
	s.sendJSON(map[string]any{"type": protocol.TypeCancelSpeech})
}

func (s *session) Speak(u controller.Utterance) {
	s.sendJSON(speakFrame{
		Type:        protocol.TypeSpeak,
		UtteranceID: u.ID,
		Text:        u.Text,
		Voice:       u.Voice,
		Lang:        u.Lang,
	})
}

func (s *session) RequestVoices() {
	s.sendJSON(map[string]any{"type": protocol.TypeRequestVoices})
}

func (s *session) PlayAnimation(state behavior.AnimationState, clip string) {
	s.sendJSON(playAnimationFrame{
		Type:  protocol.TypePlayAnimation,
		State: state,
		Clip:  clip,
		Loop:  state == behavior.AnimationIdle,
	})
}

func (s *session) SetPosition(pos behavior.Position, bounds behavior.Bounds) {
	s.sendJSON(setPositionFrame{Type: protocol.TypeSetPosition, X: pos.X, Min: bounds.Min, Max: bounds.Max})
}

func (s *session) SetMouth(frame controller.MouthFrame) {
	s.sendJSON(mouthFrame{
		Type:        protocol.TypeMouth,
		UtteranceID: frame.UtteranceID,
		Open:        frame.Open,
		Value:       frame.Value,
		Jitter:      frame.Jitter,
	})
}

var _ controller.Client = (*session)(nil)
