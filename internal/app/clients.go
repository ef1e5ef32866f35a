package app

import (
	"fmt"
	"os"
	"strings"

	redisclient "github.com/DRadulovich/perazzi-site-sub003/internal/clients/redis"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/openai"
)

type Clients struct {
	OpenaiClient openai.Client
	Sessions     redisclient.SessionStore
}

// wireClients constructs the external clients exactly once; everything
// downstream receives them by injection instead of reaching for globals.
// Redis is optional: without REDIS_ADDR the archetype vector only lives for
// the duration of a request.
func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	var sessions redisclient.SessionStore
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		s, err := redisclient.NewSessionStore(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis session store: %w", err)
		}
		sessions = s
	}

	return Clients{
		OpenaiClient: openaiClient,
		Sessions:     sessions,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Sessions != nil {
		_ = c.Sessions.Close()
	}
}
