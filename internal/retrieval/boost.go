package retrieval

import (
	"strings"

	"github.com/DRadulovich/perazzi-site-sub003/internal/archetypes"
	"github.com/DRadulovich/perazzi-site-sub003/internal/domain"
)

// Individual boost caps. Contributions are independent and additive; no
// single alignment may exceed its cap, and only the operational-reference
// penalty is negative.
const (
	modeBoost          = 0.05
	entityExactBoost   = 0.15
	entityMentionBoost = 0.08
	topicBoost         = 0.10
	focusEntityBoost   = 0.20
	keywordBoost       = 0.05
	operationalPenalty = 0.10
)

// operationalSegments marks source paths for internal reference material
// that should rank below visitor-facing content.
var operationalSegments = []string{"/operational/", "/internal-reference/"}

// Boost scores a chunk's structural alignment with the session context and
// retrieval hints. Metadata gaps are normal (ingestion is external), so every
// field access defaults safely.
func Boost(chunk *domain.KnowledgeChunk, sctx domain.SessionContext, hints domain.RetrievalHints) float64 {
	if chunk == nil {
		return 0
	}
	meta := chunk.Meta()
	score := 0.0

	if aligned(meta.Audience, sctx.Mode) {
		score += modeBoost
	}

	if slug := norm(sctx.ModelSlug); slug != "" {
		if containsNorm(meta.RelatedEntities, slug) {
			score += entityExactBoost
		} else if strings.Contains(strings.ToLower(chunk.Title), slug) ||
			strings.Contains(strings.ToLower(chunk.Summary), slug) {
			score += entityMentionBoost
		}
	}

	// Topic and focus-entity overlap count once each, not per match, so
	// structurally duplicated tags cannot double-count.
	if anyOverlap(hints.Topics, chunk.TopicList()) {
		score += topicBoost
	}
	if anyOverlap(hints.FocusEntities, meta.EntityIDs) {
		score += focusEntityBoost
	}

	if keywordHit(hints.Keywords, chunk) {
		score += keywordBoost
	}

	if isOperationalPath(chunk.SourcePath) {
		score -= operationalPenalty
	}

	return score
}

// ArchetypeBoost exposes the persona-alignment term for a chunk; see
// archetypes.Boost for the generic-chunk and invalid-vector rules.
func ArchetypeBoost(v archetypes.Vector, chunk *domain.KnowledgeChunk) float64 {
	if chunk == nil {
		return 0
	}
	return archetypes.Boost(v, chunk.Meta().ArchetypeAffinities)
}

func aligned(a, b string) bool {
	a, b = norm(a), norm(b)
	return a != "" && a == b
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsNorm(values []string, want string) bool {
	for _, v := range values {
		if norm(v) == want {
			return true
		}
	}
	return false
}

func anyOverlap(wanted, have []string) bool {
	if len(wanted) == 0 || len(have) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		if h = norm(h); h != "" {
			set[h] = struct{}{}
		}
	}
	for _, w := range wanted {
		if w = norm(w); w != "" {
			if _, ok := set[w]; ok {
				return true
			}
		}
	}
	return false
}

// keywordHit applies once however many keywords match; matching is
// whole-word over title, summary and source path.
func keywordHit(keywords []string, chunk *domain.KnowledgeChunk) bool {
	if len(keywords) == 0 {
		return false
	}
	haystack := chunk.Title + " " + chunk.Summary + " " + chunk.SourcePath
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw == "" {
			continue
		}
		if archetypes.PhraseInText(haystack, kw) {
			return true
		}
	}
	return false
}

func isOperationalPath(path string) bool {
	p := norm(path)
	if p == "" {
		return false
	}
	for _, seg := range operationalSegments {
		if strings.Contains(p, seg) || strings.HasPrefix(p, strings.TrimPrefix(seg, "/")) {
			return true
		}
	}
	return false
}
