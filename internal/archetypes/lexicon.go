package archetypes

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Tier names in priority order: a high match wins over mid, mid over low.
const (
	TierHigh = "high"
	TierMid  = "mid"
	TierLow  = "low"
)

// PhraseSet holds one archetype's tiered phrase lists plus the negative
// phrases that suppress it outright for a message.
type PhraseSet struct {
	High      []string `yaml:"high"`
	Mid       []string `yaml:"mid"`
	Low       []string `yaml:"low"`
	Negatives []string `yaml:"negatives"`
}

// HintRule maps an upstream intent/topic keyword to an archetype and tier.
type HintRule struct {
	Archetype Archetype `yaml:"archetype"`
	Tier      string    `yaml:"tier"`
}

// PatternRule adds a fixed delta when any of its substrings is present.
type PatternRule struct {
	Match []string              `yaml:"match"`
	Add   map[Archetype]float64 `yaml:"add"`
}

// Config is the full lexicon and weight table for the signal engine.
type Config struct {
	Tiers             map[string]float64      `yaml:"tiers"`
	MaxPerMessage     float64                 `yaml:"max_per_message"`
	TraceLimit        int                     `yaml:"trace_limit"`
	LongQuestionWords int                     `yaml:"long_question_words"`
	LongQuestionNudge float64                 `yaml:"long_question_nudge"`
	Archetypes        map[Archetype]PhraseSet `yaml:"archetypes"`
	Hints             map[string]HintRule     `yaml:"hints"`
	Modes             map[string]Vector       `yaml:"modes"`
	Pages             []PatternRule           `yaml:"pages"`
	Models            []PatternRule           `yaml:"models"`
}

// TierWeight resolves a tier name to its magnitude, zero for unknown names.
func (c Config) TierWeight(tier string) float64 {
	return c.Tiers[strings.ToLower(strings.TrimSpace(tier))]
}

// LoadConfig parses the embedded lexicon, or the file named by
// PERAZZI_LEXICON_PATH when set. A broken lexicon is a deploy-time mistake,
// so the error propagates instead of degrading to an empty table.
func LoadConfig() (Config, error) {
	raw := defaultLexicon
	if path := strings.TrimSpace(os.Getenv("PERAZZI_LEXICON_PATH")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read lexicon %q: %w", path, err)
		}
		raw = b
	}
	return parseConfig(raw)
}

func parseConfig(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse lexicon: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	for _, tier := range []string{TierHigh, TierMid, TierLow} {
		if cfg.Tiers[tier] <= 0 {
			return fmt.Errorf("lexicon: tier %q must have a positive weight", tier)
		}
	}
	if cfg.MaxPerMessage <= 0 {
		return fmt.Errorf("lexicon: max_per_message must be positive")
	}
	known := map[Archetype]bool{}
	for _, a := range All() {
		known[a] = true
	}
	for a := range cfg.Archetypes {
		if !known[a] {
			return fmt.Errorf("lexicon: unknown archetype %q", a)
		}
	}
	for kw, rule := range cfg.Hints {
		if !known[rule.Archetype] {
			return fmt.Errorf("lexicon: hint %q names unknown archetype %q", kw, rule.Archetype)
		}
		if cfg.TierWeight(rule.Tier) <= 0 {
			return fmt.Errorf("lexicon: hint %q has unknown tier %q", kw, rule.Tier)
		}
	}
	return nil
}
