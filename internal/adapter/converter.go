package adapter

import (
	"github.com/akolanti/DocsChat/internal/api"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/rag/ingest"
)

func ToIngestResponse(result ingest.Result) api.IngestResponse {
	return api.IngestResponse{
		Status:         string(result.Status),
		ChunksIngested: result.ChunksIngested,
	}
}

// ToDomainTurns maps the wire conversation into domain turns. The second
// return reports whether every role was valid.
func ToDomainTurns(messages []api.ChatMessage) ([]docModel.Message, bool) {
	turns := make([]docModel.Message, 0, len(messages))
	for _, m := range messages {
		role := docModel.Role(m.Role)
		if !role.Valid() {
			return nil, false
		}
		turns = append(turns, docModel.Message{Role: role, Content: m.Content})
	}
	return turns, true
}

func BadRequest(code int, message string) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
	}
}
