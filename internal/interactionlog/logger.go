package interactionlog

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/DRadulovich/perazzi-site-sub003/internal/archetypes"
	"github.com/DRadulovich/perazzi-site-sub003/internal/data/repos"
	"github.com/DRadulovich/perazzi-site-sub003/internal/domain"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
)

// Entry is one assistant exchange as seen by the caller. Raw prompt and
// response text only ever reach the dedicated redaction-aware columns, never
// the free-form metadata.
type Entry struct {
	Endpoint        string
	PageURL         string
	SessionID       string
	Model           string
	Gateway         bool
	Prompt          string
	Response        string
	ArchetypeLabel  string
	ArchetypeScores archetypes.Vector
	LowConfidence   bool
	Intents         []string
	Topics          []string
	Usage           map[string]any
	Metadata        map[string]any
}

// Result reports what happened to one record. Persistence failures live
// here and in the operational log only; they never reach the caller as an
// error.
type Result struct {
	Stored  bool
	Skipped bool
	Err     error
}

// sensitiveMetadataKeys are stripped from the free-form metadata payload
// before the derived fields are merged in.
var sensitiveMetadataKeys = []string{"prompt", "raw_prompt", "response", "messages", "message_text"}

type Logger struct {
	cfg   Config
	repo  repos.AssistantLogRepo
	log   *logger.Logger
	group errgroup.Group
}

func New(cfg Config, repo repos.AssistantLogRepo, baseLog *logger.Logger) *Logger {
	return &Logger{
		cfg:  cfg,
		repo: repo,
		log:  baseLog.With("service", "InteractionLogger"),
	}
}

// Dispatch persists the entry without the caller waiting on the insert. The
// write is tracked so Close can drain it before process shutdown; any
// failure is recorded by Record itself.
func (l *Logger) Dispatch(ctx context.Context, e Entry) {
	if l == nil || !l.cfg.Enabled {
		return
	}
	detached := context.WithoutCancel(ctx)
	l.group.Go(func() error {
		insertCtx, cancel := context.WithTimeout(detached, 10*time.Second)
		defer cancel()
		l.Record(insertCtx, e)
		return nil
	})
}

// Close waits for in-flight inserts. Call once during shutdown.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	return l.group.Wait()
}

// Record builds and inserts the row synchronously, swallowing persistence
// failures into the returned Result and the operational log.
func (l *Logger) Record(ctx context.Context, e Entry) Result {
	if l == nil || !l.cfg.Enabled {
		return Result{Skipped: true}
	}

	row := l.buildRow(e)
	if err := l.repo.Create(ctx, row); err != nil {
		l.log.Error("assistant log insert failed",
			"endpoint", e.Endpoint,
			"session_id", e.SessionID,
			"error", err,
		)
		return Result{Err: err}
	}
	return Result{Stored: true}
}

func (l *Logger) buildRow(e Entry) *domain.AssistantLog {
	prompt, promptRedacted := redactText(l.cfg, e.Prompt)
	response, responseRedacted := redactText(l.cfg, e.Response)

	metadata := map[string]any{}
	for k, v := range e.Metadata {
		metadata[k] = v
	}
	for _, key := range sensitiveMetadataKeys {
		delete(metadata, key)
	}

	usage := usageMetrics(e.Usage)
	if l.cfg.StoreUsage && len(usage) > 0 {
		metadata["usage"] = usage
	}
	metadata["archetype_distribution"] = distribution(e.ArchetypeScores, e.ArchetypeLabel)

	row := &domain.AssistantLog{
		Environment:      l.cfg.Environment,
		Endpoint:         e.Endpoint,
		PageURL:          e.PageURL,
		Archetype:        resolveLabel(e.ArchetypeLabel, e.ArchetypeScores),
		SessionID:        e.SessionID,
		Model:            e.Model,
		Gateway:          e.Gateway,
		Prompt:           prompt,
		Response:         response,
		PromptRedacted:   promptRedacted,
		ResponseRedacted: responseRedacted,
		LowConfidence:    e.LowConfidence,
		Intents:          marshalJSON(e.Intents),
		Topics:           marshalJSON(e.Topics),
		Metadata:         marshalJSON(metadata),
	}
	if v, ok := usage["input_tokens"]; ok {
		n := int64(v)
		row.PromptTokens = &n
	}
	if v, ok := usage["output_tokens"]; ok {
		n := int64(v)
		row.CompletionTokens = &n
	}
	return row
}

// redactText applies the configured text mode. The second return reports
// that the stored value differs from the input (placeholder or truncation).
func redactText(cfg Config, text string) (string, bool) {
	switch cfg.TextMode {
	case TextModeFull:
		return text, false
	case TextModeTruncate:
		runes := []rune(text)
		if cfg.MaxChars > 0 && len(runes) > cfg.MaxChars {
			return string(runes[:cfg.MaxChars]), true
		}
		return text, false
	default:
		if text == "" {
			return "", false
		}
		return Placeholder, true
	}
}

// usageMetrics extracts the provider-agnostic token counters, keeping only
// finite numbers; absent or malformed fields are omitted, not zeroed.
func usageMetrics(usage map[string]any) map[string]float64 {
	if len(usage) == 0 {
		return nil
	}
	out := map[string]float64{}
	for _, key := range []string{"input_tokens", "output_tokens", "cached_tokens", "reasoning_tokens", "total_tokens"} {
		raw, ok := usage[key]
		if !ok {
			continue
		}
		if n, ok := asFinite(raw); ok {
			out[key] = n
		}
	}
	return out
}

func asFinite(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// distribution always yields a 5-way summary: explicit scores normalized
// when they carry mass, a one-hot vector when only a label is known, and a
// neutral uniform split otherwise.
func distribution(scores archetypes.Vector, label string) map[string]float64 {
	out := make(map[string]float64, 5)
	if scores.Valid() && scores.Total() > 0 {
		total := scores.Total()
		for _, a := range archetypes.All() {
			out[string(a)] = scores[a] / total
		}
		return out
	}
	if a, ok := matchArchetype(label); ok {
		for _, other := range archetypes.All() {
			out[string(other)] = 0
		}
		out[string(a)] = 1
		return out
	}
	for _, a := range archetypes.All() {
		out[string(a)] = 0.2
	}
	return out
}

func resolveLabel(label string, scores archetypes.Vector) *string {
	if a, ok := matchArchetype(label); ok {
		s := string(a)
		return &s
	}
	if a, ok := scores.Dominant(); ok {
		s := string(a)
		return &s
	}
	return nil
}

func matchArchetype(label string) (archetypes.Archetype, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	for _, a := range archetypes.All() {
		if string(a) == label {
			return a, true
		}
	}
	return "", false
}

func marshalJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}
