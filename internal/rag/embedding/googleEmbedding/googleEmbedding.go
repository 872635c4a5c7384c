package googleEmbedding

import (
	"context"
	"os"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/rag/embedding"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingOutputDimensionality

type client struct {
	genAi *genai.Client
	model string
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func newGoogleEmbedder(ctx context.Context, modelName string) {
	apikey := os.Getenv("GOOGLE_API_KEY")
	if apikey == "" {
		apikey = config.GoogleAPIKey
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return
	}
	embeddingClient = &client{genAi: c, model: modelName}
	logger.Info("Google Embedding client created", "model", modelName)
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func (c *client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return c.embed(ctx, texts, "RETRIEVAL_DOCUMENT")
}

func (c *client) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	log := logger.WithTrace(ctx)

	if len(texts) == 0 {
		return nil, &embedding.EmbeddingError{Reason: "empty batch"}
	}

	res, err := c.doCall(ctx, getContent(texts), taskType)
	if err != nil && doRetry(err, log) {
		log.Debug("Retrying embedding call in 5 seconds")
		time.Sleep(5 * time.Second)
		res, err = c.doCall(ctx, getContent(texts), taskType)
	}
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, &embedding.EmbeddingError{Reason: "provider call failed", Err: err}
	}

	if len(res.Embeddings) != len(texts) {
		return nil, &embedding.EmbeddingError{
			Reason: "provider returned wrong embedding count",
		}
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, r := range res.Embeddings {
		if r == nil || len(r.Values) == 0 {
			return nil, &embedding.EmbeddingError{Reason: "provider returned empty vector"}
		}
		vectors = append(vectors, r.Values)
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &dimension,
		TaskType:             taskType,
	})
}
