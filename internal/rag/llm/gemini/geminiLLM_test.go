package gemini

import (
	"testing"

	"google.golang.org/genai"

	"github.com/akolanti/DocsChat/internal/domain/docModel"
)

func TestToGenaiContents(t *testing.T) {
	turns := []docModel.Message{
		{Role: docModel.RoleSystem, Content: "instructions"},
		{Role: docModel.RoleSystem, Content: "context block"},
		{Role: docModel.RoleUser, Content: "first question"},
		{Role: docModel.RoleAssistant, Content: "first answer"},
		{Role: docModel.RoleUser, Content: "second question"},
	}

	contents, systemParts := toGenaiContents(turns)

	if len(systemParts) != 2 {
		t.Fatalf("got %d system parts, want 2", len(systemParts))
	}
	if systemParts[0].Text != "instructions" || systemParts[1].Text != "context block" {
		t.Error("system parts out of order")
	}

	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(contents))
	}
	wantRoles := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser}
	for i, c := range contents {
		if genai.Role(c.Role) != wantRoles[i] {
			t.Errorf("content %d has role %s, want %s", i, c.Role, wantRoles[i])
		}
	}
	if contents[2].Parts[0].Text != "second question" {
		t.Error("conversation order was not preserved")
	}
}

func TestToGenaiContents_NoSystemTurns(t *testing.T) {
	contents, systemParts := toGenaiContents([]docModel.Message{
		{Role: docModel.RoleUser, Content: "q"},
	})

	if len(systemParts) != 0 {
		t.Errorf("got %d system parts, want none", len(systemParts))
	}
	if len(contents) != 1 {
		t.Errorf("got %d contents, want 1", len(contents))
	}
}
