package services

import (
	"context"
	"strings"

	"github.com/DRadulovich/perazzi-site-sub003/internal/archetypes"
	redisclient "github.com/DRadulovich/perazzi-site-sub003/internal/clients/redis"
	"github.com/DRadulovich/perazzi-site-sub003/internal/domain"
	"github.com/DRadulovich/perazzi-site-sub003/internal/interactionlog"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/envutil"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
	"github.com/DRadulovich/perazzi-site-sub003/internal/retrieval"
)

type QueryInput struct {
	SessionID  string                `json:"session_id"`
	Messages   []domain.Message      `json:"messages"`
	Context    domain.SessionContext `json:"context"`
	Hints      domain.RetrievalHints `json:"hints"`
	Archetypes archetypes.Vector     `json:"archetypes,omitempty"`
}

type QueryResult struct {
	Chunks        []domain.RetrievedChunk `json:"chunks"`
	MaxScore      float64                 `json:"max_score"`
	Archetypes    archetypes.Vector       `json:"archetypes"`
	Delta         archetypes.Delta        `json:"delta"`
	Trace         []string                `json:"trace,omitempty"`
	Dominant      string                  `json:"dominant,omitempty"`
	LowConfidence bool                    `json:"low_confidence"`
}

type AssistantService interface {
	Query(ctx context.Context, in QueryInput) (QueryResult, error)
}

// Retriever is the slice of the retrieval engine the service depends on.
type Retriever interface {
	Retrieve(
		ctx context.Context,
		question string,
		sctx domain.SessionContext,
		hints domain.RetrievalHints,
		vector archetypes.Vector,
	) (retrieval.Result, error)
}

type assistantService struct {
	engine    Retriever
	signals   *archetypes.Engine
	sessions  redisclient.SessionStore
	ilog      *interactionlog.Logger
	log       *logger.Logger
	decay     float64
	threshold float64
	model     string
}

// NewAssistantService wires the per-turn pipeline: decay the stored vector,
// fuse this turn's signals, retrieve and rerank, persist the vector and
// dispatch the interaction log. sessions may be nil when redis is not
// configured; the vector then only lives within the request.
func NewAssistantService(
	engine Retriever,
	signals *archetypes.Engine,
	sessions redisclient.SessionStore,
	ilog *interactionlog.Logger,
	baseLog *logger.Logger,
) AssistantService {
	return &assistantService{
		engine:    engine,
		signals:   signals,
		sessions:  sessions,
		ilog:      ilog,
		log:       baseLog.With("service", "AssistantService"),
		decay:     envutil.Float("PERAZZI_ARCHETYPE_DECAY", 0.97),
		threshold: envutil.Float("PERAZZI_LOW_CONFIDENCE_THRESHOLD", 0.55),
		model:     envutil.String("PERAZZI_ASSISTANT_MODEL", "gpt-4o"),
	}
}

func (s *assistantService) Query(ctx context.Context, in QueryInput) (QueryResult, error) {
	vector := s.loadVector(ctx, in)
	vector.Decay(s.decay)

	question := latestUserMessage(in.Messages)

	delta, trace := s.signals.Apply(archetypes.SignalInput{
		Mode:      firstNonEmpty(in.Hints.Mode, in.Context.Mode),
		PageURL:   in.Context.PageURL,
		ModelSlug: in.Context.ModelSlug,
		Intents:   in.Hints.Intents,
		Topics:    in.Hints.Topics,
		Text:      question,
	})
	vector.Add(delta)

	result := QueryResult{
		Chunks:     []domain.RetrievedChunk{},
		Archetypes: vector,
		Delta:      delta,
		Trace:      trace,
	}

	// No extractable user turn means nothing to search, not an error.
	if question != "" {
		retrieved, err := s.engine.Retrieve(ctx, question, in.Context, in.Hints, vector)
		if err != nil {
			return QueryResult{}, err
		}
		result.Chunks = retrieved.Chunks
		result.MaxScore = retrieved.MaxScore
		result.LowConfidence = retrieved.MaxScore < s.threshold
	}

	if dominant, ok := vector.Dominant(); ok {
		result.Dominant = string(dominant)
	}

	s.saveVector(ctx, in.SessionID, vector)

	s.ilog.Dispatch(ctx, interactionlog.Entry{
		Endpoint:        "assistant.query",
		PageURL:         in.Context.PageURL,
		SessionID:       in.SessionID,
		Model:           s.model,
		Prompt:          question,
		ArchetypeScores: vector,
		LowConfidence:   result.LowConfidence,
		Intents:         in.Hints.Intents,
		Topics:          in.Hints.Topics,
		Metadata: map[string]any{
			"max_score":   result.MaxScore,
			"chunk_count": len(result.Chunks),
			"mode":        in.Context.Mode,
		},
	})

	return result, nil
}

func (s *assistantService) loadVector(ctx context.Context, in QueryInput) archetypes.Vector {
	if in.Archetypes.Valid() {
		return in.Archetypes.Clone()
	}
	if s.sessions != nil {
		v, err := s.sessions.Vector(ctx, in.SessionID)
		if err != nil {
			s.log.Warn("session vector load failed", "session_id", in.SessionID, "error", err)
		} else if v != nil {
			return v
		}
	}
	return archetypes.NewVector()
}

func (s *assistantService) saveVector(ctx context.Context, sessionID string, v archetypes.Vector) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.SaveVector(ctx, sessionID, v); err != nil {
		s.log.Warn("session vector save failed", "session_id", sessionID, "error", err)
	}
}

func latestUserMessage(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(strings.TrimSpace(messages[i].Role), "user") {
			if content := strings.TrimSpace(messages[i].Content); content != "" {
				return content
			}
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
