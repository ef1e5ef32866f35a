package domain

// SessionContext is the transient page context supplied with each request.
type SessionContext struct {
	Mode         string `json:"mode,omitempty"`
	PageURL      string `json:"page_url,omitempty"`
	ModelSlug    string `json:"model_slug,omitempty"`
	PlatformSlug string `json:"platform_slug,omitempty"`
	Locale       string `json:"locale,omitempty"`
}

// RetrievalHints are derived upstream from the user's message and consumed
// read-only by retrieval and boosting.
type RetrievalHints struct {
	Mode          string   `json:"mode,omitempty"`
	Intents       []string `json:"intents,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	FocusEntities []string `json:"focus_entities,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
}

// Message is one turn of the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RetrievedChunk is the per-request ranked result handed to prompt assembly.
type RetrievedChunk struct {
	ChunkID    string  `json:"chunk_id"`
	Title      string  `json:"title"`
	SourcePath string  `json:"source_path"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}
