package controller

// Message is an event consumed by the controller loop.
type Message interface {
	message()
}

// CapabilitiesReported carries the browser features available to the client.
type CapabilitiesReported struct {
	SpeechRecognition bool
	SpeechSynthesis   bool
	ViewportWidth     float64
}

// TranscriptReceived is a final recognition result or typed input.
type TranscriptReceived struct {
	Text string
}

// RecognitionFailed reports a recognition error from the client.
type RecognitionFailed struct {
	Reason string
}

// ListenRequested asks for a new recognition session.
type ListenRequested struct{}

// SpeakRequested asks the avatar to say a sentence. Empty text means the introduction.
type SpeakRequested struct {
	Text string
}

// SynthesisStarted is the onstart callback for an utterance.
type SynthesisStarted struct {
	UtteranceID string
}

// SynthesisEnded is the onend callback for an utterance.
type SynthesisEnded struct {
	UtteranceID string
}

// VoicesChanged carries the client's voice list.
type VoicesChanged struct {
	Voices []Voice
}

// ViewportResized carries a new viewport width in pixels.
type ViewportResized struct {
	Width float64
}

// ScriptChanged replaces the character settings, e.g. after a config switch.
type ScriptChanged struct {
	Options Options
}

type revertFired struct {
	generation uint64
}

type cueFired struct {
	utteranceID string
	index       int
	open        bool
}

type voicePollFired struct {
	generation uint64
}

func (CapabilitiesReported) message() {}
func (TranscriptReceived) message()   {}
func (RecognitionFailed) message()    {}
func (ListenRequested) message()      {}
func (SpeakRequested) message()       {}
func (SynthesisStarted) message()     {}
func (SynthesisEnded) message()       {}
func (VoicesChanged) message()        {}
func (ViewportResized) message()      {}
func (ScriptChanged) message()        {}
func (revertFired) message()          {}
func (cueFired) message()             {}
func (voicePollFired) message()       {}
