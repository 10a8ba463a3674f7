// Package protocol defines the JSON frames exchanged with the browser client
// over /client-ws.
package protocol

import (
	"errors"
	"strings"

	"github.com/bytedance/sonic"
)

// Client to server frame types.
const (
	TypeHello              = "hello"
	TypeRecognitionResult  = "recognition-result"
	TypeRecognitionError   = "recognition-error"
	TypeRecognitionEnd     = "recognition-end"
	TypeSynthesisStart     = "synthesis-start"
	TypeSynthesisEnd       = "synthesis-end"
	TypeVoices             = "voices"
	TypeResize             = "resize"
	TypeStartListening     = "start-listening"
	TypeSpeakIntro         = "speak-intro"
	TypeTextInput          = "text-input"
	TypeFetchConfigs       = "fetch-configs"
	TypeSwitchConfig       = "switch-config"
	TypeFetchHistoryList   = "fetch-history-list"
	TypeFetchAndSetHistory = "fetch-and-set-history"
	TypeCreateNewHistory   = "create-new-history"
	TypeDeleteHistory      = "delete-history"
	TypeHeartbeat          = "heartbeat"
)

// Server to client frame types.
const (
	TypeSetModel          = "set-model"
	TypeStartRecognition  = "start-recognition"
	TypeCancelSpeech      = "cancel-speech"
	TypeSpeak             = "speak"
	TypeRequestVoices     = "request-voices"
	TypePlayAnimation     = "play-animation"
	TypeSetPosition       = "set-position"
	TypeMouth             = "mouth"
	TypeTranscript        = "transcript"
	TypeConfigFiles       = "config-files"
	TypeConfigSwitched    = "config-switched"
	TypeHistoryList       = "history-list"
	TypeHistoryData       = "history-data"
	TypeNewHistoryCreated = "new-history-created"
	TypeHistoryDeleted    = "history-deleted"
	TypeError             = "error"
)

// ErrMissingType rejects frames without a type field.
var ErrMissingType = errors.New("frame type is empty")

// VoiceInfo is one entry of speechSynthesis.getVoices().
type VoiceInfo struct {
	Name    string `json:"name"`
	Lang    string `json:"lang"`
	Default bool   `json:"default,omitempty"`
}

// ClientEvent is any frame sent by the browser. Fields are set per type.
type ClientEvent struct {
	Type              string      `json:"type"`
	Text              string      `json:"text,omitempty"`
	Final             *bool       `json:"final,omitempty"`
	Error             string      `json:"error,omitempty"`
	UtteranceID       string      `json:"utterance_id,omitempty"`
	Voices            []VoiceInfo `json:"voices,omitempty"`
	Width             float64     `json:"width,omitempty"`
	SpeechRecognition bool        `json:"speech_recognition,omitempty"`
	SpeechSynthesis   bool        `json:"speech_synthesis,omitempty"`
	File              string      `json:"file,omitempty"`
	HistoryUID        string      `json:"history_uid,omitempty"`
}

// IsFinal reports whether a recognition result is final. Results without the
// flag are treated as final.
func (e ClientEvent) IsFinal() bool {
	return e.Final == nil || *e.Final
}

// Decode parses one client frame.
func Decode(data []byte) (ClientEvent, error) {
	var event ClientEvent
	if err := sonic.ConfigStd.Unmarshal(data, &event); err != nil {
		return ClientEvent{}, err
	}
	event.Type = strings.TrimSpace(event.Type)
	if event.Type == "" {
		return ClientEvent{}, ErrMissingType
	}
	return event, nil
}

// Encode serialises a server frame.
func Encode(frame any) ([]byte, error) {
	return sonic.ConfigStd.Marshal(frame)
}

// ErrorFrame builds an error frame with a message.
func ErrorFrame(message string) map[string]any {
	return map[string]any{"type": TypeError, "message": message}
}
