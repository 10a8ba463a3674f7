package behavior

import "testing"

func TestInterpretRuleTable(t *testing.T) {
	cases := map[string]Intent{
		"introduce yourself":            IntentIntroduce,
		"Hello Teacher":                 IntentGreet,
		"please JUMP":                   IntentJump,
		"could you move left a bit":     IntentMoveLeft,
		"Move Right":                    IntentMoveRight,
		"what is the capital of france": IntentNone,
		"":                              IntentNone,
	}
	for transcript, want := range cases {
		if got := Interpret(transcript); got != want {
			t.Fatalf("Interpret(%q)=%s, want %s", transcript, got, want)
		}
	}
}

func TestInterpretIntroduceAnyCaseAndContext(t *testing.T) {
	for _, transcript := range []string{
		"INTRODUCE YOURSELF",
		"hey, Introduce Yourself please",
		"introduce yourself and then jump",
		"hello teacher, introduce yourself",
	} {
		if got := Interpret(transcript); got != IntentIntroduce {
			t.Fatalf("Interpret(%q)=%s, want %s", transcript, got, IntentIntroduce)
		}
	}
}

func TestInterpretPriorityOrder(t *testing.T) {
	if got := Interpret("hello teacher, jump"); got != IntentGreet {
		t.Fatalf("Interpret=%s, want %s", got, IntentGreet)
	}
	if got := Interpret("jump then move left"); got != IntentJump {
		t.Fatalf("Interpret=%s, want %s", got, IntentJump)
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	got := Rules()
	got[0].Phrase = "changed"
	if Rules()[0].Phrase != "introduce yourself" {
		t.Fatal("Rules() exposed internal table")
	}
}
