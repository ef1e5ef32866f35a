package archetypes

import (
	"math"
	"testing"
)

func testConfig() Config {
	return Config{
		Tiers:             map[string]float64{TierHigh: 0.6, TierMid: 0.35, TierLow: 0.2},
		MaxPerMessage:     1.0,
		TraceLimit:        15,
		LongQuestionWords: 8,
		LongQuestionNudge: 0.15,
		Archetypes: map[Archetype]PhraseSet{
			Prestige: {
				High:      []string{"bespoke", "engraving grade"},
				Mid:       []string{"custom stock"},
				Low:       []string{"finish"},
				Negatives: []string{"budget option"},
			},
			Analyst: {
				High: []string{"bore diameter"},
				Mid:  []string{"specs"},
				Low:  []string{"weight"},
			},
			Legacy: {
				High: []string{"family heirloom"},
			},
		},
		Hints: map[string]HintRule{
			"bespoke": {Archetype: Prestige, Tier: TierHigh},
			"specs":   {Archetype: Analyst, Tier: TierHigh},
			"service": {Archetype: Loyalist, Tier: TierMid},
		},
		Modes: map[string]Vector{
			"prospect": {Prestige: 0.3, Analyst: 0.2, Achiever: 0.2},
			"owner":    {Loyalist: 0.4, Legacy: 0.15},
		},
		Pages: []PatternRule{
			{Match: []string{"heritage", "history"}, Add: map[Archetype]float64{Legacy: 0.3, Loyalist: 0.1}},
		},
		Models: []PatternRule{
			{Match: []string{"sco"}, Add: map[Archetype]float64{Prestige: 0.4}},
		},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApplyHighTierBeatsLowTierOnce(t *testing.T) {
	engine := NewEngine(testConfig())
	// Message matches both a high phrase and a low phrase for Prestige.
	delta, _ := engine.Apply(SignalInput{Text: "bespoke finish"})
	if !almostEqual(delta[Prestige], 0.6) {
		t.Fatalf("Prestige delta = %v, want 0.6 (high tier only, not summed)", delta[Prestige])
	}
}

func TestApplyNegativeSuppressesArchetype(t *testing.T) {
	engine := NewEngine(testConfig())
	delta, _ := engine.Apply(SignalInput{Text: "bespoke work but a budget option please"})
	if delta[Prestige] != 0 {
		t.Fatalf("Prestige delta = %v, want 0 after negative-phrase suppression", delta[Prestige])
	}
	// Other archetypes are unaffected by Prestige's negatives.
	delta, _ = engine.Apply(SignalInput{Text: "budget option with bore diameter details"})
	if !almostEqual(delta[Analyst], 0.6) {
		t.Fatalf("Analyst delta = %v, want 0.6", delta[Analyst])
	}
}

func TestApplyBespokeProspectAdditive(t *testing.T) {
	engine := NewEngine(testConfig())
	delta, _ := engine.Apply(SignalInput{
		Mode:    "prospect",
		Intents: []string{"bespoke"},
		Text:    "Tell me about engraving options",
	})
	// Hint high (0.6) + mode pattern (0.3), each clamped independently.
	if !almostEqual(delta[Prestige], 0.9) {
		t.Fatalf("Prestige delta = %v, want 0.9", delta[Prestige])
	}
	if !almostEqual(delta[Analyst], 0.2) {
		t.Fatalf("Analyst delta = %v, want 0.2", delta[Analyst])
	}
}

func TestApplyClampsPerArchetypePerMessage(t *testing.T) {
	engine := NewEngine(testConfig())
	delta, _ := engine.Apply(SignalInput{
		Mode:      "prospect",
		ModelSlug: "mx12-sco-gold",
		Intents:   []string{"bespoke"},
		Text:      "bespoke engraving grade work",
	})
	// 0.6 + 0.3 + 0.4 + 0.6 would exceed the cap.
	if !almostEqual(delta[Prestige], 1.0) {
		t.Fatalf("Prestige delta = %v, want clamp at 1.0", delta[Prestige])
	}
}

func TestApplyPageAndModeSignals(t *testing.T) {
	engine := NewEngine(testConfig())
	delta, _ := engine.Apply(SignalInput{
		Mode:    "owner",
		PageURL: "/heritage/the-family-story",
	})
	if !almostEqual(delta[Legacy], 0.45) {
		t.Fatalf("Legacy delta = %v, want 0.45 (mode 0.15 + page 0.3)", delta[Legacy])
	}
	if !almostEqual(delta[Loyalist], 0.5) {
		t.Fatalf("Loyalist delta = %v, want 0.5 (mode 0.4 + page 0.1)", delta[Loyalist])
	}
}

func TestApplyLongQuestionNudge(t *testing.T) {
	engine := NewEngine(testConfig())
	delta, _ := engine.Apply(SignalInput{
		Text: "could you explain how stock length and comb height interact for a taller shooter please",
	})
	if !almostEqual(delta[Analyst], 0.15) {
		t.Fatalf("Analyst delta = %v, want 0.15 long-question nudge", delta[Analyst])
	}
}

func TestApplyTraceCapDoesNotStopScoring(t *testing.T) {
	cfg := testConfig()
	cfg.TraceLimit = 2
	engine := NewEngine(cfg)
	delta, trace := engine.Apply(SignalInput{
		Mode:    "prospect",
		PageURL: "/heritage/history",
		Intents: []string{"bespoke", "specs", "service"},
		Text:    "family heirloom with bore diameter details",
	})
	if len(trace) != 2 {
		t.Fatalf("trace length = %d, want 2", len(trace))
	}
	// Signals past the trace cap still contribute score.
	if delta[Legacy] == 0 || delta[Analyst] == 0 {
		t.Fatalf("expected untraced signals to score, got delta=%v", delta)
	}
}

func TestApplyEmptyInput(t *testing.T) {
	engine := NewEngine(testConfig())
	delta, trace := engine.Apply(SignalInput{})
	for _, a := range All() {
		if delta[a] != 0 {
			t.Fatalf("expected zero delta, got %v for %s", delta[a], a)
		}
	}
	if len(trace) != 0 {
		t.Fatalf("expected no trace entries, got %v", trace)
	}
}
