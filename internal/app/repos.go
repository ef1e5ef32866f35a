package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/DRadulovich/perazzi-site-sub003/internal/data/repos"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
)

type Repos struct {
	Chunks       repos.ChunkStore
	AssistantLog repos.AssistantLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) (Repos, error) {
	chunks, err := repos.NewChunkStore(db, log)
	if err != nil {
		return Repos{}, fmt.Errorf("init chunk store: %w", err)
	}
	return Repos{
		Chunks:       chunks,
		AssistantLog: repos.NewAssistantLogRepo(db, log),
	}, nil
}
