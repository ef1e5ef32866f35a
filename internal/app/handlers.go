package app

import (
	"github.com/DRadulovich/perazzi-site-sub003/internal/handlers"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
)

type Handlers struct {
	Assistant *handlers.AssistantHandler
	Health    *handlers.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	return Handlers{
		Assistant: handlers.NewAssistantHandler(serviceset.Assistant, log),
		Health:    handlers.NewHealthHandler(),
	}
}
