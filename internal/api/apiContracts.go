package api

// ChatMessage is one conversation turn on the wire. Role must be one of
// "system", "user" or "assistant".
type ChatMessage struct {
	Role    string `json:"role" example:"user"`
	Content string `json:"content" example:"How do I authenticate against the discovery endpoint?"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
}

type IngestResponse struct {
	Status         string `json:"status" example:"completed"`
	ChunksIngested int    `json:"chunks_ingested,omitempty" example:"412"`
}

// requests---------------------

type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required"`
}
