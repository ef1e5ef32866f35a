package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/DRadulovich/perazzi-site-sub003/internal/data/repos"
	"github.com/DRadulovich/perazzi-site-sub003/internal/domain"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/openai"
)

type fakeStore struct {
	chunks []*domain.KnowledgeChunk
	calls  []repos.ChunkQuery
	err    error
}

func (f *fakeStore) Search(_ context.Context, q repos.ChunkQuery) ([]*domain.KnowledgeChunk, error) {
	f.calls = append(f.calls, q)
	if f.err != nil {
		return nil, f.err
	}
	excluded := map[string]bool{}
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}
	var out []*domain.KnowledgeChunk
	for _, ch := range f.chunks {
		if ch.Language != q.Language || excluded[ch.ID] {
			continue
		}
		if len(q.Topics) > 0 && !overlapsTopics(ch, q.Topics) {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

func overlapsTopics(ch *domain.KnowledgeChunk, topics []string) bool {
	have := map[string]bool{}
	for _, t := range ch.TopicList() {
		have[t] = true
	}
	for _, t := range topics {
		if have[t] {
			return true
		}
	}
	return false
}

type fakeEmbedder struct {
	vec   []float32
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func testLog(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func embJSON(t *testing.T, vec []float32) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(vec)
	if err != nil {
		t.Fatalf("marshal embedding: %v", err)
	}
	return datatypes.JSON(raw)
}

func engineChunk(t *testing.T, id, lang string, emb []float32, topics []string) *domain.KnowledgeChunk {
	t.Helper()
	return &domain.KnowledgeChunk{
		ID:        id,
		Language:  lang,
		Title:     "chunk " + id,
		Content:   "content " + id,
		Embedding: embJSON(t, emb),
		Topics:    mustJSON(t, topics),
	}
}

func TestRetrieveEmptyQuestionSkipsEverything(t *testing.T) {
	store := &fakeStore{}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(store, emb, testLog(t))

	res, err := engine.Retrieve(context.Background(), "   ", domain.SessionContext{}, domain.RetrievalHints{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Chunks) != 0 || res.MaxScore != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected zero store calls, got %d", len(store.calls))
	}
	if emb.calls != 0 {
		t.Fatalf("expected zero embed calls, got %d", emb.calls)
	}
}

func TestRetrieveEmbeddingConnectionErrorSurfaces(t *testing.T) {
	store := &fakeStore{}
	emb := &fakeEmbedder{err: &openai.ConnectionError{Err: errors.New("dial tcp: refused")}}
	engine := NewEngine(store, emb, testLog(t))

	_, err := engine.Retrieve(context.Background(), "question", domain.SessionContext{}, domain.RetrievalHints{}, nil)
	if !openai.IsConnectionError(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if len(store.calls) != 0 {
		t.Fatal("store must not be queried when embedding fails")
	}
}

func TestRetrieveDedupesAndSortsDescending(t *testing.T) {
	store := &fakeStore{chunks: []*domain.KnowledgeChunk{
		engineChunk(t, "a", "en", []float32{1, 0}, []string{"platforms"}),
		engineChunk(t, "b", "en", []float32{0.9, 0.1}, nil),
		engineChunk(t, "c", "en", []float32{0, 1}, nil),
	}}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(store, emb, testLog(t))

	res, err := engine.Retrieve(
		context.Background(),
		"tell me about platforms",
		domain.SessionContext{},
		domain.RetrievalHints{Topics: []string{"platforms"}},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]bool{}
	for i, ch := range res.Chunks {
		if seen[ch.ChunkID] {
			t.Fatalf("duplicate chunk id %q in results", ch.ChunkID)
		}
		seen[ch.ChunkID] = true
		if i > 0 && res.Chunks[i-1].Score < ch.Score {
			t.Fatalf("results not sorted descending at index %d", i)
		}
	}
	if len(res.Chunks) != 3 {
		t.Fatalf("expected 3 unique chunks, got %d", len(res.Chunks))
	}
	if res.MaxScore != res.Chunks[0].Score {
		t.Fatalf("maxScore %v != top score %v", res.MaxScore, res.Chunks[0].Score)
	}
}

func TestRetrieveGeneralPhaseExcludesTargetedIDs(t *testing.T) {
	store := &fakeStore{chunks: []*domain.KnowledgeChunk{
		engineChunk(t, "targeted", "en", []float32{1, 0}, []string{"grade_sco"}),
		engineChunk(t, "general", "en", []float32{0.5, 0.5}, nil),
	}}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(store, emb, testLog(t))

	_, err := engine.Retrieve(
		context.Background(),
		"engraving grades",
		domain.SessionContext{},
		domain.RetrievalHints{Topics: []string{"grade_sco"}},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.calls) < 2 {
		t.Fatalf("expected targeted + general store calls, got %d", len(store.calls))
	}
	general := store.calls[len(store.calls)-1]
	if len(general.Topics) != 0 {
		t.Fatal("general phase must not carry a topic filter")
	}
	found := false
	for _, id := range general.ExcludeIDs {
		if id == "targeted" {
			found = true
		}
	}
	if !found {
		t.Fatalf("general phase must exclude targeted ids, got %v", general.ExcludeIDs)
	}
}

func TestRetrieveLanguageFallbackOrder(t *testing.T) {
	store := &fakeStore{chunks: []*domain.KnowledgeChunk{
		engineChunk(t, "english", "en", []float32{1, 0}, nil),
	}}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(store, emb, testLog(t))

	res, err := engine.Retrieve(
		context.Background(),
		"una domanda",
		domain.SessionContext{Locale: "it-IT"},
		domain.RetrievalHints{},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.calls) != 2 {
		t.Fatalf("expected 2 store calls (it then en), got %d", len(store.calls))
	}
	if store.calls[0].Language != "it" || store.calls[1].Language != "en" {
		t.Fatalf("language order = [%s, %s], want [it, en]", store.calls[0].Language, store.calls[1].Language)
	}
	if len(res.Chunks) != 1 || res.Chunks[0].ChunkID != "english" {
		t.Fatalf("expected english fallback chunk, got %+v", res.Chunks)
	}
}

func TestRetrieveTopicTaggedBeatsEqualSimilarity(t *testing.T) {
	// Identical embeddings; only the topic tag differs.
	store := &fakeStore{chunks: []*domain.KnowledgeChunk{
		engineChunk(t, "untagged", "en", []float32{1, 0}, nil),
		engineChunk(t, "tagged", "en", []float32{1, 0}, []string{"grade_sco"}),
	}}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(store, emb, testLog(t))

	res, err := engine.Retrieve(
		context.Background(),
		"Tell me about bespoke engraving grades",
		domain.SessionContext{Mode: "prospect"},
		domain.RetrievalHints{Intents: []string{"bespoke"}, Topics: []string{"grade_sco"}},
		nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Chunks) == 0 || res.Chunks[0].ChunkID != "tagged" {
		t.Fatalf("expected tagged chunk first, got %+v", res.Chunks)
	}
}

func TestRetrieveStoreErrorIsFatal(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	engine := NewEngine(store, emb, testLog(t))

	_, err := engine.Retrieve(context.Background(), "question", domain.SessionContext{}, domain.RetrievalHints{}, nil)
	if err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestLanguageOrder(t *testing.T) {
	cases := []struct {
		locale string
		want   []string
	}{
		{"", []string{"en"}},
		{"en", []string{"en"}},
		{"en-US", []string{"en"}},
		{"it-IT", []string{"it", "en"}},
		{"de_DE", []string{"de", "en"}},
	}
	for _, tc := range cases {
		got := languageOrder(tc.locale)
		if len(got) != len(tc.want) {
			t.Fatalf("languageOrder(%q) = %v, want %v", tc.locale, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("languageOrder(%q) = %v, want %v", tc.locale, got, tc.want)
			}
		}
	}
}
