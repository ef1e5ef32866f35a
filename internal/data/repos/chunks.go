package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/DRadulovich/perazzi-site-sub003/internal/domain"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/envutil"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
)

// ChunkQuery is the parameterized similarity-query surface. Optional filters
// are assembled as a clause list; identifiers and values are never spliced
// into SQL text.
type ChunkQuery struct {
	Language   string
	Topics     []string
	ExcludeIDs []string
	ScanLimit  int
}

type ChunkStore interface {
	Search(ctx context.Context, q ChunkQuery) ([]*domain.KnowledgeChunk, error)
}

type chunkStore struct {
	db    *gorm.DB
	log   *logger.Logger
	table string
}

// identPattern is the allow-pattern for the configurable knowledge table
// name. Anything else fails construction before the first query runs.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const defaultScanLimit = 256

func NewChunkStore(db *gorm.DB, baseLog *logger.Logger) (ChunkStore, error) {
	table := envutil.String("PERAZZI_KNOWLEDGE_TABLE", domain.KnowledgeChunk{}.TableName())
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid knowledge table name %q", table)
	}
	return &chunkStore{
		db:    db,
		log:   baseLog.With("repo", "ChunkStore"),
		table: table,
	}, nil
}

// Search returns candidate rows for one language. Pricing-sensitive rows and
// rows carrying a contains_pricing* guardrail are excluded in SQL so they
// never consume the scan budget; similarity scoring happens in the caller.
func (s *chunkStore) Search(ctx context.Context, q ChunkQuery) ([]*domain.KnowledgeChunk, error) {
	language := strings.TrimSpace(q.Language)
	if language == "" {
		return nil, fmt.Errorf("chunk search: language required")
	}

	tx := s.db.WithContext(ctx).
		Table(s.table).
		Where("language = ?", language).
		Where("pricing_sensitive = ?", false).
		Where("NOT EXISTS (SELECT 1 FROM jsonb_array_elements_text(COALESCE(guardrail_flags, '[]'::jsonb)) f WHERE f LIKE 'contains_pricing%')").
		Where("embedding IS NOT NULL AND embedding <> 'null'::jsonb AND embedding <> '[]'::jsonb")

	if len(q.Topics) > 0 {
		conds := make([]string, 0, len(q.Topics))
		args := make([]interface{}, 0, len(q.Topics))
		for _, topic := range q.Topics {
			topic = strings.TrimSpace(topic)
			if topic == "" {
				continue
			}
			encoded, err := json.Marshal([]string{topic})
			if err != nil {
				continue
			}
			conds = append(conds, "topics @> ?")
			args = append(args, datatypes.JSON(encoded))
		}
		if len(conds) > 0 {
			tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
	}

	if len(q.ExcludeIDs) > 0 {
		tx = tx.Where("id NOT IN ?", q.ExcludeIDs)
	}

	limit := q.ScanLimit
	if limit <= 0 {
		limit = defaultScanLimit
	}

	var rows []*domain.KnowledgeChunk
	if err := tx.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("chunk search: %w", err)
	}
	return rows, nil
}
