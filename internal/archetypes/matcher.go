package archetypes

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// message is a pre-normalized view of one free-text turn. Tokenizing once up
// front keeps phrase matching cheap and the boundary semantics testable.
type message struct {
	lower  string
	tokens map[string]struct{}
	words  int
}

func newMessage(text string) message {
	lower := strings.ToLower(text)
	tokens := map[string]struct{}{}
	words := 0
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		tokens[b.String()] = struct{}{}
		words++
		b.Reset()
	}
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return message{lower: lower, tokens: tokens, words: words}
}

// matchesPhrase reports a word-boundary-safe occurrence of phrase. A
// single-word entry must equal a whole token ("cat" never matches inside
// "category"); a multi-word phrase must sit between non-alphanumeric
// boundaries on both sides.
func (m message) matchesPhrase(phrase string) bool {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return false
	}
	if !strings.ContainsAny(phrase, " \t") {
		_, ok := m.tokens[phrase]
		return ok
	}
	return containsBounded(m.lower, phrase)
}

// PhraseInText reports a word-boundary-safe occurrence of phrase in text.
// Shared with the rerank model's keyword matching.
func PhraseInText(text, phrase string) bool {
	return newMessage(text).matchesPhrase(phrase)
}

// matchesAny reports whether any entry in phrases matches.
func (m message) matchesAny(phrases []string) bool {
	for _, p := range phrases {
		if m.matchesPhrase(p) {
			return true
		}
	}
	return false
}

// containsBounded scans for phrase occurrences in text whose surrounding
// runes are non-alphanumeric (or the string edges).
func containsBounded(text, phrase string) bool {
	start := 0
	for {
		idx := strings.Index(text[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start
		if boundedAt(text, idx, len(phrase)) {
			return true
		}
		start = idx + 1
	}
}

func boundedAt(text string, idx, length int) bool {
	if idx > 0 {
		before, _ := utf8.DecodeLastRuneInString(text[:idx])
		if isWordRune(before) {
			return false
		}
	}
	end := idx + length
	if end < len(text) {
		after, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(after) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
