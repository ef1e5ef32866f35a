package retrieval

import (
	"context"
	"sort"
	"strings"

	"github.com/DRadulovich/perazzi-site-sub003/internal/archetypes"
	"github.com/DRadulovich/perazzi-site-sub003/internal/data/repos"
	"github.com/DRadulovich/perazzi-site-sub003/internal/domain"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/envutil"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
)

// Embedder is the slice of the embedding client the engine needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Result struct {
	Chunks   []domain.RetrievedChunk `json:"chunks"`
	MaxScore float64                 `json:"max_score"`
}

type Engine struct {
	store    repos.ChunkStore
	embedder Embedder
	log      *logger.Logger
	limit    int
}

func NewEngine(store repos.ChunkStore, embedder Embedder, baseLog *logger.Logger) *Engine {
	limit := envutil.Int("PERAZZI_RETRIEVAL_LIMIT", 8)
	if limit <= 0 {
		limit = 8
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		log:      baseLog.With("service", "RetrievalEngine"),
		limit:    limit,
	}
}

// Retrieve runs the two-phase fetch: a topic-targeted pass at the phase
// limit, then a general pass at twice the limit excluding already-selected
// ids. Each phase tries the locale's base language first and falls back to
// English on zero rows, never mixing languages in one query. An empty
// question returns an empty result without touching the store or the
// embedding provider.
func (e *Engine) Retrieve(
	ctx context.Context,
	question string,
	sctx domain.SessionContext,
	hints domain.RetrievalHints,
	vector archetypes.Vector,
) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{Chunks: []domain.RetrievedChunk{}}, nil
	}

	qEmb, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return Result{}, err
	}

	languages := languageOrder(sctx.Locale)

	var targeted []scoredChunk
	if len(hints.Topics) > 0 {
		targeted, err = e.phase(ctx, phaseQuery{
			languages: languages,
			topics:    hints.Topics,
			limit:     e.limit,
		}, qEmb, sctx, hints, vector)
		if err != nil {
			return Result{}, err
		}
	}

	exclude := make([]string, 0, len(targeted))
	for _, sc := range targeted {
		exclude = append(exclude, sc.chunk.ID)
	}

	general, err := e.phase(ctx, phaseQuery{
		languages:  languages,
		excludeIDs: exclude,
		limit:      2 * e.limit,
	}, qEmb, sctx, hints, vector)
	if err != nil {
		return Result{}, err
	}

	// Targeted results come first, so dedupe-by-id keeps them over general
	// duplicates of the same chunk.
	merged := append(targeted, general...)
	seen := make(map[string]struct{}, len(merged))
	deduped := merged[:0]
	for _, sc := range merged {
		if _, ok := seen[sc.chunk.ID]; ok {
			continue
		}
		seen[sc.chunk.ID] = struct{}{}
		deduped = append(deduped, sc)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].score > deduped[j].score
	})
	if len(deduped) > e.limit {
		deduped = deduped[:e.limit]
	}

	out := Result{Chunks: make([]domain.RetrievedChunk, 0, len(deduped))}
	for _, sc := range deduped {
		out.Chunks = append(out.Chunks, domain.RetrievedChunk{
			ChunkID:    sc.chunk.ID,
			Title:      sc.chunk.Title,
			SourcePath: sc.chunk.SourcePath,
			Content:    sc.chunk.Content,
			Score:      sc.score,
		})
		if sc.score > out.MaxScore {
			out.MaxScore = sc.score
		}
	}
	return out, nil
}

type phaseQuery struct {
	languages  []string
	topics     []string
	excludeIDs []string
	limit      int
}

type scoredChunk struct {
	chunk *domain.KnowledgeChunk
	score float64
}

// phase queries one language at a time in fallback order, stopping at the
// first language that yields rows, then scores and truncates to the phase
// limit.
func (e *Engine) phase(
	ctx context.Context,
	q phaseQuery,
	qEmb []float32,
	sctx domain.SessionContext,
	hints domain.RetrievalHints,
	vector archetypes.Vector,
) ([]scoredChunk, error) {
	var rows []*domain.KnowledgeChunk
	for _, lang := range q.languages {
		found, err := e.store.Search(ctx, repos.ChunkQuery{
			Language:   lang,
			Topics:     q.topics,
			ExcludeIDs: q.excludeIDs,
		})
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			rows = found
			break
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	scored := make([]scoredChunk, 0, len(rows))
	for _, chunk := range rows {
		if chunk == nil || chunk.ID == "" {
			continue
		}
		raw := Cosine(qEmb, chunk.EmbeddingVector())
		score := raw + Boost(chunk, sctx, hints) + ArchetypeBoost(vector, chunk)
		scored = append(scored, scoredChunk{chunk: chunk, score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > q.limit {
		scored = scored[:q.limit]
	}
	return scored, nil
}

// languageOrder maps a locale to the two-element query fallback order.
func languageOrder(locale string) []string {
	base := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(base, "-_"); i > 0 {
		base = base[:i]
	}
	if base == "" || base == "en" {
		return []string{"en"}
	}
	return []string{base, "en"}
}
