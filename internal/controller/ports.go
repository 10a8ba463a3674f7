package controller

import "github.com/saker-ai/classroom-avatar/internal/behavior"

// Voice is a synthesis voice reported by the client.
type Voice struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default,omitempty"`
}

// Utterance is one synthesis request.
type Utterance struct {
	ID    string `json:"utterance_id"`
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Lang  string `json:"lang"`
}

// MouthFrame sets the mouth morph parameters for the renderer.
type MouthFrame struct {
	UtteranceID string  `json:"utterance_id,omitempty"`
	Open        bool    `json:"open"`
	Value       float64 `json:"value"`
	Jitter      float64 `json:"jitter,omitempty"`
}

// Recognizer starts a speech recognition session on the client.
type Recognizer interface {
	StartRecognition(lang string)
}

// Synthesizer drives client speech synthesis.
type Synthesizer interface {
	CancelSpeech()
	Speak(u Utterance)
	RequestVoices()
}

// Renderer applies named parameters to the avatar scene.
type Renderer interface {
	PlayAnimation(state behavior.AnimationState, clip string)
	SetPosition(pos behavior.Position, bounds behavior.Bounds)
	SetMouth(frame MouthFrame)
}

// Client bundles the three collaborators; the websocket session implements it.
type Client interface {
	Recognizer
	Synthesizer
	Renderer
}

// Interaction is reported after each transcript is handled.
type Interaction struct {
	Transcript string
	Intent     behavior.Intent
	Response   string
}
