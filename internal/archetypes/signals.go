package archetypes

import (
	"fmt"
	"strings"
)

// SignalInput is everything one turn contributes to the session vector. The
// engine is a pure function of this struct; the caller owns the stored state.
type SignalInput struct {
	Mode      string
	PageURL   string
	ModelSlug string
	Intents   []string
	Topics    []string
	Text      string
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Apply fuses hint, mode, page, model-slug and free-text signals into a
// single per-archetype delta. Every addition clamps to the per-archetype
// per-message maximum, so source ordering cannot change the final value.
// Trace strings are capped; later signals still score, just untraced.
func (e *Engine) Apply(in SignalInput) (Delta, []string) {
	ac := &accum{
		delta:      NewVector(),
		cap:        e.cfg.MaxPerMessage,
		traceLimit: e.cfg.TraceLimit,
	}
	if ac.traceLimit <= 0 {
		ac.traceLimit = 15
	}

	e.applyHints(ac, in)
	e.applyMode(ac, in.Mode)
	e.applyPatterns(ac, "page", in.PageURL, e.cfg.Pages)
	e.applyPatterns(ac, "model", in.ModelSlug, e.cfg.Models)
	e.applyLexicon(ac, in.Text)

	return ac.delta, ac.trace
}

func (e *Engine) applyHints(ac *accum, in SignalInput) {
	seen := map[string]bool{}
	for _, kw := range append(append([]string{}, in.Intents...), in.Topics...) {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		rule, ok := e.cfg.Hints[kw]
		if !ok {
			continue
		}
		ac.add(rule.Archetype, e.cfg.TierWeight(rule.Tier), "hint:"+kw)
	}
}

func (e *Engine) applyMode(ac *accum, mode string) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		return
	}
	pattern, ok := e.cfg.Modes[mode]
	if !ok {
		return
	}
	for _, a := range All() {
		if pattern[a] > 0 {
			ac.add(a, pattern[a], "mode:"+mode)
		}
	}
}

func (e *Engine) applyPatterns(ac *accum, source, value string, rules []PatternRule) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return
	}
	for _, rule := range rules {
		matched := ""
		for _, sub := range rule.Match {
			if sub != "" && strings.Contains(value, strings.ToLower(sub)) {
				matched = sub
				break
			}
		}
		if matched == "" {
			continue
		}
		for _, a := range All() {
			if rule.Add[a] > 0 {
				ac.add(a, rule.Add[a], source+":"+matched)
			}
		}
	}
}

func (e *Engine) applyLexicon(ac *accum, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	msg := newMessage(text)

	for _, a := range All() {
		set, ok := e.cfg.Archetypes[a]
		if !ok {
			continue
		}
		// A negative phrase vetoes the archetype for this message outright.
		if msg.matchesAny(set.Negatives) {
			ac.note(fmt.Sprintf("%s suppressed (negative phrase)", a))
			continue
		}
		// Highest matching tier wins; tiers never stack.
		for _, tier := range []struct {
			name    string
			phrases []string
		}{
			{TierHigh, set.High},
			{TierMid, set.Mid},
			{TierLow, set.Low},
		} {
			if msg.matchesAny(tier.phrases) {
				ac.add(a, e.cfg.TierWeight(tier.name), "lexicon:"+tier.name)
				break
			}
		}
	}

	if e.cfg.LongQuestionWords > 0 && msg.words > e.cfg.LongQuestionWords && e.cfg.LongQuestionNudge > 0 {
		ac.add(Analyst, e.cfg.LongQuestionNudge, "long_question")
	}
}

type accum struct {
	delta      Delta
	trace      []string
	cap        float64
	traceLimit int
}

// add applies amount to one archetype, clamped to the per-message cap.
func (ac *accum) add(a Archetype, amount float64, reason string) {
	if amount <= 0 {
		return
	}
	next := ac.delta[a] + amount
	if next > ac.cap {
		next = ac.cap
	}
	ac.delta[a] = next
	ac.note(fmt.Sprintf("%s +%.2f (%s)", a, amount, reason))
}

func (ac *accum) note(entry string) {
	if len(ac.trace) >= ac.traceLimit {
		return
	}
	ac.trace = append(ac.trace, entry)
}
