// Package behavior holds the avatar's pure decision logic: transcript
// interpretation, intent dispatch, lip-sync cue timing and movement clamping.
package behavior

import "strings"

// Intent is the normalized meaning extracted from a transcript.
type Intent string

const (
	IntentNone      Intent = "none"
	IntentIntroduce Intent = "introduce"
	IntentGreet     Intent = "greet"
	IntentJump      Intent = "jump"
	IntentMoveLeft  Intent = "move_left"
	IntentMoveRight Intent = "move_right"
)

// Rule maps a phrase contained in a transcript to an intent.
type Rule struct {
	Phrase string `json:"phrase"`
	Intent Intent `json:"intent"`
}

// Order matters: the first matching rule wins.
var rules = []Rule{
	{Phrase: "introduce yourself", Intent: IntentIntroduce},
	{Phrase: "hello teacher", Intent: IntentGreet},
	{Phrase: "jump", Intent: IntentJump},
	{Phrase: "move left", Intent: IntentMoveLeft},
	{Phrase: "move right", Intent: IntentMoveRight},
}

// Interpret maps a raw transcript to at most one intent.
func Interpret(transcript string) Intent {
	normalized := strings.ToLower(transcript)
	for _, rule := range rules {
		if strings.Contains(normalized, rule.Phrase) {
			return rule.Intent
		}
	}
	return IntentNone
}

// Rules returns a copy of the rule table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
