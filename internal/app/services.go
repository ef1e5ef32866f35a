package app

import (
	"fmt"

	"github.com/DRadulovich/perazzi-site-sub003/internal/archetypes"
	"github.com/DRadulovich/perazzi-site-sub003/internal/interactionlog"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
	"github.com/DRadulovich/perazzi-site-sub003/internal/retrieval"
	"github.com/DRadulovich/perazzi-site-sub003/internal/services"
)

type Services struct {
	Assistant      services.AssistantService
	InteractionLog *interactionlog.Logger
}

func wireServices(log *logger.Logger, clients Clients, reposet Repos) (Services, error) {
	lexicon, err := archetypes.LoadConfig()
	if err != nil {
		return Services{}, fmt.Errorf("load lexicon: %w", err)
	}
	signals := archetypes.NewEngine(lexicon)

	engine := retrieval.NewEngine(reposet.Chunks, clients.OpenaiClient, log)

	ilog := interactionlog.New(interactionlog.LoadConfig(), reposet.AssistantLog, log)

	assistant := services.NewAssistantService(engine, signals, clients.Sessions, ilog, log)

	return Services{
		Assistant:      assistant,
		InteractionLog: ilog,
	}, nil
}
