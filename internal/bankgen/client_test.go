package bankgen

import (
	"context"
	"strings"
	"testing"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

func TestMechanicFromPrompt(t *testing.T) {
	prompt, err := buildGenerationPrompt(2, models.MechanicSentenceScramble, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := mechanicFromPrompt(prompt)
	if got != string(models.MechanicSentenceScramble) {
		t.Errorf("mechanicFromPrompt got %q, want %q", got, models.MechanicSentenceScramble)
	}
}

func TestMockClient_Generate(t *testing.T) {
	prompt, err := buildGenerationPrompt(1, models.MechanicImageSingleChoice, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client := &mockClient{}
	raw, err := client.Generate(context.Background(), systemPrompt(), prompt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	batch, err := parseBatch(raw, 1, models.MechanicImageSingleChoice)
	if err != nil {
		t.Fatalf("mock output failed to parse: %v", err)
	}
	if len(batch) != 2 {
		t.Errorf("expected 2 mock questions, got %d", len(batch))
	}
}

func TestBuildGenerationPrompt_UnknownMechanic(t *testing.T) {
	_, err := buildGenerationPrompt(0, models.Mechanic("nonexistent-mechanic"), 10)
	if err == nil {
		t.Fatal("expected error for unknown mechanic")
	}
	if !strings.Contains(err.Error(), "no prompt template") {
		t.Errorf("unexpected error: %v", err)
	}
}
