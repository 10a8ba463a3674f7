package behavior

import (
	"strings"
	"unicode/utf8"
)

const (
	cueBaseMs    = 250
	cuePerRuneMs = 50
)

// SpeechCue is a mouth open/close window relative to utterance start.
type SpeechCue struct {
	OpenAtMs  int `json:"open_at_ms"`
	CloseAtMs int `json:"close_at_ms"`
}

// Schedule derives one cue per whitespace-delimited word. The result depends
// only on word lengths.
func Schedule(utterance string) []SpeechCue {
	words := strings.Fields(utterance)
	cues := make([]SpeechCue, 0, len(words))
	offset := 0
	for _, word := range words {
		duration := cueBaseMs + cuePerRuneMs*utf8.RuneCountInString(word)
		cues = append(cues, SpeechCue{
			OpenAtMs:  offset,
			CloseAtMs: offset + duration*2/3,
		})
		offset += duration
	}
	return cues
}

// ScheduleDuration is the total length covered by Schedule(utterance) in ms.
func ScheduleDuration(utterance string) int {
	total := 0
	for _, word := range strings.Fields(utterance) {
		total += cueBaseMs + cuePerRuneMs*utf8.RuneCountInString(word)
	}
	return total
}
