package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssistantLog is the append-only record of one assistant exchange. Rows are
// never updated after insert; prompt/response text arrives already redacted
// per the configured text mode.
type AssistantLog struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Environment      string         `gorm:"column:environment;not null" json:"environment"`
	Endpoint         string         `gorm:"column:endpoint;not null" json:"endpoint"`
	PageURL          string         `gorm:"column:page_url" json:"page_url"`
	Archetype        *string        `gorm:"column:archetype" json:"archetype,omitempty"`
	SessionID        string         `gorm:"column:session_id;index" json:"session_id"`
	Model            string         `gorm:"column:model" json:"model"`
	Gateway          bool           `gorm:"column:gateway;not null;default:false" json:"gateway"`
	Prompt           string         `gorm:"column:prompt" json:"prompt"`
	Response         string         `gorm:"column:response" json:"response"`
	PromptRedacted   bool           `gorm:"column:prompt_redacted;not null;default:false" json:"prompt_redacted"`
	ResponseRedacted bool           `gorm:"column:response_redacted;not null;default:false" json:"response_redacted"`
	PromptTokens     *int64         `gorm:"column:prompt_tokens" json:"prompt_tokens,omitempty"`
	CompletionTokens *int64         `gorm:"column:completion_tokens" json:"completion_tokens,omitempty"`
	LowConfidence    bool           `gorm:"column:low_confidence;not null;default:false" json:"low_confidence"`
	Intents          datatypes.JSON `gorm:"type:jsonb;column:intents" json:"intents"`
	Topics           datatypes.JSON `gorm:"type:jsonb;column:topics" json:"topics"`
	Metadata         datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (AssistantLog) TableName() string {
	return "assistant_log"
}
