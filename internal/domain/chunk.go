package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/DRadulovich/perazzi-site-sub003/internal/archetypes"
)

// KnowledgeChunk is one vector-indexed knowledge record. Rows are written by
// the offline ingestion pipeline and read-only here, so every optional field
// decodes with a safe default instead of failing the request.
type KnowledgeChunk struct {
	ID               string         `gorm:"primaryKey" json:"id"`
	Language         string         `gorm:"column:language;index;not null" json:"language"`
	Title            string         `gorm:"column:title" json:"title"`
	Summary          string         `gorm:"column:summary" json:"summary"`
	SourcePath       string         `gorm:"column:source_path" json:"source_path"`
	Content          string         `gorm:"column:content" json:"content"`
	PricingSensitive bool           `gorm:"column:pricing_sensitive;not null;default:false" json:"pricing_sensitive"`
	Topics           datatypes.JSON `gorm:"type:jsonb;column:topics" json:"topics"`
	GuardrailFlags   datatypes.JSON `gorm:"type:jsonb;column:guardrail_flags" json:"guardrail_flags"`
	Metadata         datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	Embedding        datatypes.JSON `gorm:"type:jsonb;column:embedding" json:"embedding"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunk"
}

// ChunkMetadata is the structured part of the metadata jsonb column.
type ChunkMetadata struct {
	Audience            string                 `json:"audience"`
	PlatformTags        []string               `json:"platform_tags"`
	DisciplineTags      []string               `json:"discipline_tags"`
	EntityIDs           []string               `json:"entity_ids"`
	RelatedEntities     []string               `json:"related_entities"`
	ArchetypeAffinities []archetypes.Archetype `json:"archetype_affinities"`
}

// Meta decodes the metadata column, returning a zero value on malformed or
// absent payloads.
func (c *KnowledgeChunk) Meta() ChunkMetadata {
	var meta ChunkMetadata
	if c == nil || len(c.Metadata) == 0 {
		return meta
	}
	_ = json.Unmarshal(c.Metadata, &meta)
	return meta
}

// TopicList decodes the topics column, empty on malformed payloads.
func (c *KnowledgeChunk) TopicList() []string {
	if c == nil || len(c.Topics) == 0 {
		return nil
	}
	var topics []string
	_ = json.Unmarshal(c.Topics, &topics)
	return topics
}

// EmbeddingVector decodes the stored embedding, nil when absent or broken.
func (c *KnowledgeChunk) EmbeddingVector() []float32 {
	if c == nil || len(c.Embedding) == 0 {
		return nil
	}
	var vec []float32
	if err := json.Unmarshal(c.Embedding, &vec); err != nil {
		return nil
	}
	return vec
}
