package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/logger"
	"github.com/DRadulovich/perazzi-site-sub003/internal/platform/openai"
	"github.com/DRadulovich/perazzi-site-sub003/internal/services"
)

type AssistantHandler struct {
	assistantService services.AssistantService
	log              *logger.Logger
}

func NewAssistantHandler(assistantService services.AssistantService, baseLog *logger.Logger) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		log:              baseLog.With("handler", "AssistantHandler"),
	}
}

// Retrieve runs one assistant turn: signal fusion, embedding, two-phase
// retrieval and reranking. The response carries the ranked chunks plus the
// updated archetype vector for the prompt-assembly layer.
func (h *AssistantHandler) Retrieve(c *gin.Context) {
	var req services.QueryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.assistantService.Query(c.Request.Context(), req)
	if err != nil {
		if openai.IsConnectionError(err) {
			h.log.Warn("embedding provider unreachable", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant temporarily unavailable"})
			return
		}
		h.log.Error("assistant query failed", "session_id", req.SessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assistant query failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
