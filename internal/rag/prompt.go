package rag

import (
	"fmt"
	"strings"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
)

// BuildPrompt assembles the turns handed to the model. Order is fixed:
// grounding instructions first, then one context turn carrying the retrieved
// chunks tagged with the rank the instructions tell the model to cite, then
// the conversation exactly as the caller sent it. With nothing retrieved the
// context turn is omitted entirely, which is what pushes the model toward its
// "I'm not sure" answer instead of inventing one.
func BuildPrompt(retrieved []docModel.Retrieved, turns []docModel.Message) []docModel.Message {
	prompt := make([]docModel.Message, 0, len(turns)+2)
	prompt = append(prompt, docModel.Message{
		Role:    docModel.RoleSystem,
		Content: config.SystemInstructions,
	})
	if len(retrieved) > 0 {
		prompt = append(prompt, docModel.Message{
			Role:    docModel.RoleSystem,
			Content: renderContext(retrieved),
		})
	}
	return append(prompt, turns...)
}

func renderContext(retrieved []docModel.Retrieved) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, r := range retrieved {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s", r.Rank, r.Document.Content)
		if src := r.Document.Metadata[docModel.MetaSourceURL]; src != "" {
			fmt.Fprintf(&b, "\n(source: %s)", src)
		}
	}
	return b.String()
}
