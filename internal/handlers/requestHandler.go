package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/akolanti/DocsChat/internal/adapter"
	"github.com/akolanti/DocsChat/internal/api"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/rag"
	"github.com/akolanti/DocsChat/internal/rag/embedding"
	"github.com/akolanti/DocsChat/internal/rag/ingest"
	"github.com/akolanti/DocsChat/internal/rag/llm"
	"github.com/akolanti/DocsChat/internal/rag/vectorDB"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

var logRH *logger_i.Logger
var ragService rag.Service

// InitHandlers hands the handlers their one dependency. Must run before the
// server starts routing.
func InitHandlers(s rag.Service) {
	logRH = logger_i.NewLogger("Handlers")
	ragService = s
}

// GetHandler is the liveness probe.
func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// PostIngestHandler godoc
// @Summary      Ingest the documentation corpus
// @Description  Crawls the configured docs site, chunks and embeds every page and persists the corpus. Runs at most once; later calls return already_ingested.
// @Tags         Ingestion
// @Produce      json
// @Success      200  {object}  api.IngestResponse "completed or already_ingested"
// @Failure      409  {object}  api.ErrorResponse  "An ingestion run is already in progress"
// @Failure      502  {object}  api.ErrorResponse  "An upstream dependency failed"
// @Failure      504  {object}  api.ErrorResponse  "An upstream dependency timed out"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	result, err := ragService.Ingest(r.Context())
	if err != nil {
		code, message := ingestErrorStatus(err)
		logRH.Error("Ingestion failed", "error", err)
		WriteErrorResponse(w, code, message)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToIngestResponse(result))
}

// ChatHandler godoc
// @Summary      Ask the docs assistant
// @Description  Accepts the full conversation, retrieves grounding context for the newest user turn and streams the answer as server-sent events.
// @Tags         Chat
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      api.ChatRequest  true  "Ordered conversation turns, newest user turn last"
// @Success      200      {string}  string           "SSE stream of answer fragments"
// @Failure      400      {object}  api.ErrorResponse "Malformed body, unknown role or no user query"
// @Failure      502      {object}  api.ErrorResponse "Context resolution failed"
// @Failure      504      {object}  api.ErrorResponse "An upstream dependency timed out"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", request.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logRH.Error("Couldn't close the Chat handler reader :", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || len(requestData.Messages) == 0 {
		logRH.Warn("Bad Chat Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	turns, ok := adapter.ToDomainTurns(requestData.Messages)
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, "Unknown message role")
		return
	}

	stream, err := ragService.Chat(request.Context(), turns)
	if err != nil {
		// nothing has been written yet so a plain JSON error still works
		code, message := chatErrorStatus(err)
		logRH.Error("Chat context resolution failed", "error", err)
		WriteErrorResponse(w, code, message)
		return
	}

	streamAnswer(w, stream)
}

func ingestErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ingest.ErrAlreadyRunning):
		return http.StatusConflict, "Ingestion already in progress"
	case errors.Is(err, docModel.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, "Upstream timeout"
	default:
		return http.StatusBadGateway, "Ingestion failed"
	}
}

func chatErrorStatus(err error) (int, string) {
	var embErr *embedding.EmbeddingError
	var vecErr *vectorDB.VectorQueryError
	var genErr *llm.GenerationError
	switch {
	case errors.Is(err, rag.ErrEmptyConversation):
		return http.StatusBadRequest, "Conversation must end with a user message"
	case errors.Is(err, docModel.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, "Upstream timeout"
	case errors.As(err, &embErr), errors.As(err, &vecErr):
		return http.StatusBadGateway, "Context resolution failed"
	case errors.As(err, &genErr):
		return http.StatusBadGateway, "Generation failed"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
