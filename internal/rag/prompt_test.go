package rag

import (
	"strings"
	"testing"

	"github.com/akolanti/DocsChat/internal/config"
	"github.com/akolanti/DocsChat/internal/domain/docModel"
)

func retrievedDocs(contents ...string) []docModel.Retrieved {
	out := make([]docModel.Retrieved, len(contents))
	for i, c := range contents {
		out[i] = docModel.Retrieved{
			Rank: i + 1,
			Document: docModel.Document{
				Id:       c,
				Content:  c,
				Metadata: map[string]string{docModel.MetaSourceURL: "https://docs.example.com/" + c},
			},
		}
	}
	return out
}

func TestBuildPrompt_Structure(t *testing.T) {
	turns := []docModel.Message{
		{Role: docModel.RoleUser, Content: "earlier question"},
		{Role: docModel.RoleAssistant, Content: "earlier answer"},
		{Role: docModel.RoleUser, Content: "current question"},
	}

	prompt := BuildPrompt(retrievedDocs("alpha", "beta"), turns)

	if len(prompt) != 5 {
		t.Fatalf("got %d turns, want 5", len(prompt))
	}
	if prompt[0].Role != docModel.RoleSystem || prompt[0].Content != config.SystemInstructions {
		t.Error("first turn is not the grounding instructions")
	}
	if prompt[1].Role != docModel.RoleSystem {
		t.Error("second turn is not the context turn")
	}
	for i, turn := range turns {
		if prompt[2+i] != turn {
			t.Errorf("history turn %d was altered: %+v", i, prompt[2+i])
		}
	}
	if prompt[len(prompt)-1].Content != "current question" {
		t.Error("query is not the final turn")
	}
}

func TestBuildPrompt_ContextTurnTagsRanks(t *testing.T) {
	prompt := BuildPrompt(retrievedDocs("alpha", "beta"), []docModel.Message{
		{Role: docModel.RoleUser, Content: "q"},
	})

	ctx := prompt[1].Content
	for _, want := range []string{"[1] alpha", "[2] beta", "https://docs.example.com/alpha"} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context turn missing %q:\n%s", want, ctx)
		}
	}
	if strings.Index(ctx, "[1]") > strings.Index(ctx, "[2]") {
		t.Error("context entries are out of rank order")
	}
}

func TestBuildPrompt_NoContextTurnWhenNothingRetrieved(t *testing.T) {
	turns := []docModel.Message{{Role: docModel.RoleUser, Content: "q"}}

	prompt := BuildPrompt(nil, turns)

	if len(prompt) != 2 {
		t.Fatalf("got %d turns, want instructions plus query only", len(prompt))
	}
	if strings.Contains(prompt[0].Content+prompt[1].Content, "Context:") {
		t.Error("empty retrieval still produced a context block")
	}
}
