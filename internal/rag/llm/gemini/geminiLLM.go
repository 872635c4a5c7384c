package gemini

import (
	"context"
	"iter"
	"os"
	"sync"

	"google.golang.org/genai"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
	"github.com/akolanti/DocsChat/internal/rag/llm"
	"github.com/akolanti/DocsChat/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string) {
	apikey := os.Getenv("GOOGLE_API_KEY")
	if apikey == "" {
		apikey = config.GoogleAPIKey
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
	go closeClient(ctx, geminiClient)
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}

func (c *llmClient) Stream(ctx context.Context, turns []docModel.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		log := logger.WithTrace(ctx)

		contents, systemParts := toGenaiContents(turns)
		cfg := &genai.GenerateContentConfig{
			MaxOutputTokens: config.MaxAnswerTokens,
		}
		if len(systemParts) > 0 {
			cfg.SystemInstruction = &genai.Content{Parts: systemParts}
		}

		for resp, err := range c.client.Models.GenerateContentStream(ctx, c.modelName, contents, cfg) {
			if err != nil {
				log.Error("Gemini stream failed", "error", err)
				yield("", &llm.GenerationError{Err: err})
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				//caller stopped consuming, ctx cancellation tears the call down
				return
			}
		}
	}
}

// toGenaiContents maps chat turns onto the Gemini request shape: system turns
// become system-instruction parts, everything else alternating user/model
// contents in order.
func toGenaiContents(turns []docModel.Message) ([]*genai.Content, []*genai.Part) {
	var contents []*genai.Content
	var systemParts []*genai.Part

	for _, turn := range turns {
		switch turn.Role {
		case docModel.RoleSystem:
			systemParts = append(systemParts, &genai.Part{Text: turn.Content})
		case docModel.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: turn.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: turn.Content}},
			})
		}
	}
	return contents, systemParts
}
