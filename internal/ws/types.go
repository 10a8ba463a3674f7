package ws

import "github.com/saker-ai/classroom-avatar/internal/behavior"

type startRecognitionFrame struct {
	Type string `json:"type"`
	Lang string `json:"lang"`
}

type speakFrame struct {
	Type        string `json:"type"`
	UtteranceID string `json:"utterance_id"`
	Text        string `json:"text"`
	Voice       string `json:"voice"`
	Lang        string `json:"lang"`
}

type playAnimationFrame struct {
	Type  string                  `json:"type"`
	State behavior.AnimationState `json:"state"`
	Clip  string                  `json:"clip"`
	Loop  bool                    `json:"loop"`
}

type setPositionFrame struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type mouthFrame struct {
	Type        string  `json:"type"`
	UtteranceID string  `json:"utterance_id,omitempty"`
	Open        bool    `json:"open"`
	Value       float64 `json:"value"`
	Jitter      float64 `json:"jitter,omitempty"`
}

type transcriptFrame struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Intent   string `json:"intent"`
	Response string `json:"response,omitempty"`
}

type setModelFrame struct {
	Type           string            `json:"type"`
	ClientUID      string            `json:"client_uid"`
	ConfName       string            `json:"conf_name"`
	ConfUID        string            `json:"conf_uid"`
	CharacterName  string            `json:"character_name"`
	ModelURL       string            `json:"model_url"`
	Clips          map[string]string `json:"clips"`
	AvailableClips []string          `json:"available_clips"`
	PixelsPerUnit  float64           `json:"pixels_per_unit"`
}
