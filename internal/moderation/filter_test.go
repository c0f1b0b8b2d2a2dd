package moderation

import "testing"

func TestFilterMessageMasksBannedWord(t *testing.T) {
	got := FilterMessage("this is amk test")
	want := "this is *** test"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFilterMessageCaseInsensitive(t *testing.T) {
	got := FilterMessage("AMK")
	if got != "***" {
		t.Errorf("Expected \"***\", got %q", got)
	}
}

func TestFilterMessageDiacriticInsensitive(t *testing.T) {
	// "ş" folds to "s", so the word still matches and both characters of
	// the original spelling get masked.
	got := FilterMessage("şg")
	if got != "**" {
		t.Errorf("Expected \"**\", got %q", got)
	}
}

func TestFilterMessageInsideLongerText(t *testing.T) {
	got := FilterMessage("you are such a NOOB dude")
	want := "you are such a **** dude"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFilterMessageCleanTextUnchanged(t *testing.T) {
	input := "good game, well played"
	if got := FilterMessage(input); got != input {
		t.Errorf("Clean text should pass through, got %q", got)
	}
}

func TestFilterMessageEmpty(t *testing.T) {
	if got := FilterMessage(""); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestFilterMessagePreservesLength(t *testing.T) {
	cases := []string{
		"amk",
		"hello amk world",
		"AmK aq sg",
		"çok mal bir oyun",
	}
	for _, input := range cases {
		got := FilterMessage(input)
		if len([]rune(got)) != len([]rune(input)) {
			t.Errorf("Length changed for %q: got %q", input, got)
		}
	}
}

func TestFilterMessageMasksEveryOccurrence(t *testing.T) {
	got := FilterMessage("aq aq aq")
	want := "** ** **"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
