package interactionlog

import (
	"strings"

	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/envutil"
)

// Text redaction modes. Omission is the default: prompt/response text is
// only ever stored when an operator opts in.
const (
	TextModeOmitted  = "omitted"
	TextModeTruncate = "truncate"
	TextModeFull     = "full"
)

// Placeholder stored in place of omitted prompt/response text.
const Placeholder = "[redacted]"

type Config struct {
	Enabled     bool
	TextMode    string
	MaxChars    int
	Environment string
	StoreUsage  bool
}

func LoadConfig() Config {
	mode := strings.ToLower(envutil.String("PERAZZI_LOG_TEXT_MODE", TextModeOmitted))
	switch mode {
	case TextModeOmitted, TextModeTruncate, TextModeFull:
	default:
		mode = TextModeOmitted
	}
	maxChars := envutil.Int("PERAZZI_LOG_MAX_CHARS", 2000)
	if maxChars < 0 {
		maxChars = 0
	}
	return Config{
		Enabled:     envutil.Bool("PERAZZI_LOGGING_ENABLED", false),
		TextMode:    mode,
		MaxChars:    maxChars,
		Environment: envutil.String("PERAZZI_ENV", "development"),
		StoreUsage:  envutil.Bool("PERAZZI_LOG_STORE_USAGE", true),
	}
}
