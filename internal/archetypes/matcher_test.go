package archetypes

import "testing"

func TestMatchesPhraseWholeToken(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		phrase string
		want   bool
	}{
		{"single word inside larger token", "I love this category", "cat", false},
		{"single word as whole token", "I have a cat", "cat", true},
		{"single word at sentence end", "what a cat.", "cat", true},
		{"case insensitive", "My CAT is here", "cat", true},
		{"token split by punctuation", "cat-egory talk", "cat", true},
		{"absent word", "no pets here", "cat", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := newMessage(tc.text).matchesPhrase(tc.phrase); got != tc.want {
				t.Fatalf("matchesPhrase(%q, %q) = %v, want %v", tc.text, tc.phrase, got, tc.want)
			}
		})
	}
}

func TestMatchesPhraseMultiWord(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		phrase string
		want   bool
	}{
		{"exact phrase", "looking for a bore diameter chart", "bore diameter", true},
		{"phrase at start", "bore diameter matters", "bore diameter", true},
		{"phrase embedded in word", "carbore diameter", "bore diameter", false},
		{"phrase trailing into word", "the bore diameters", "bore diameter", false},
		{"punctuation boundaries", "specs (bore diameter) please", "bore diameter", true},
		{"missing second word", "bore size", "bore diameter", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := newMessage(tc.text).matchesPhrase(tc.phrase); got != tc.want {
				t.Fatalf("matchesPhrase(%q, %q) = %v, want %v", tc.text, tc.phrase, got, tc.want)
			}
		})
	}
}

func TestPhraseInText(t *testing.T) {
	if !PhraseInText("MX8 competition barrel", "mx8") {
		t.Fatal("expected whole-token match for mx8")
	}
	if PhraseInText("premx8000 parts", "mx8") {
		t.Fatal("mx8 must not match inside premx8000")
	}
}

func TestWordCount(t *testing.T) {
	msg := newMessage("How does the drop and cast change point of impact?")
	if msg.words != 10 {
		t.Fatalf("words = %d, want 10", msg.words)
	}
}
