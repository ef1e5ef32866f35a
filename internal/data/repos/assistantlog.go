package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/DRadulovich/perazzi-site-sub003/internal/domain"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
)

type AssistantLogRepo interface {
	Create(ctx context.Context, row *domain.AssistantLog) error
}

type assistantLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssistantLogRepo(db *gorm.DB, baseLog *logger.Logger) AssistantLogRepo {
	return &assistantLogRepo{db: db, log: baseLog.With("repo", "AssistantLogRepo")}
}

func (r *assistantLogRepo) Create(ctx context.Context, row *domain.AssistantLog) error {
	if row == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(row).Error
}
