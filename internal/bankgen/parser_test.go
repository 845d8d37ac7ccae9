package bankgen

import (
	"strings"
	"testing"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `[{"id":"a"}]`, `[{"id":"a"}]`},
		{"json fence", "```json\n[{\"id\":\"a\"}]\n```", `[{"id":"a"}]`},
		{"bare fence", "```\n[{\"id\":\"a\"}]\n```", `[{"id":"a"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripCodeFences(tt.in)
			if got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseBatch_Valid(t *testing.T) {
	text := `[
		{"id":"L2_MC_001","mechanic":"multiple-choice-text-text","sentence":"She ___ to school.","options":["go","goes","going","went"],"correct_answer":1,"skill":"Grammar","difficulty":0.3},
		{"id":"L2_MC_002","mechanic":"multiple-choice-text-text","sentence":"I ___ happy.","options":["am","is","are"],"correct_answer":0,"skill":"Grammar","difficulty":0.2}
	]`

	batch, err := parseBatch(text, 2, models.MechanicMultipleChoiceText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(batch))
	}
	for _, q := range batch {
		if q.Level != 2 {
			t.Errorf("expected stamped level 2, got %d", q.Level)
		}
	}
}

func TestParseBatch_DuplicateID(t *testing.T) {
	text := `[
		{"id":"L2_MC_001","mechanic":"multiple-choice-text-text","sentence":"A","options":["a","b"],"correct_answer":0,"skill":"Grammar","difficulty":0.3},
		{"id":"L2_MC_001","mechanic":"multiple-choice-text-text","sentence":"B","options":["a","b"],"correct_answer":0,"skill":"Grammar","difficulty":0.3}
	]`

	_, err := parseBatch(text, 2, models.MechanicMultipleChoiceText)
	if err == nil {
		t.Fatal("expected duplicate id error, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("expected duplicate error, got: %v", err)
	}
}

func TestParseBatch_MechanicMismatch(t *testing.T) {
	text := `[{"id":"L2_WP_001","mechanic":"word-pronunciation-practice","target_word":"cat","skill":"Pronunciation","difficulty":0.1}]`

	_, err := parseBatch(text, 2, models.MechanicMultipleChoiceText)
	if err == nil {
		t.Fatal("expected mechanic mismatch error, got nil")
	}
}

func TestParseBatch_FailsStructuralValidation(t *testing.T) {
	// Missing options entirely - the bank loader's validator should reject it.
	text := `[{"id":"L2_MC_001","mechanic":"multiple-choice-text-text","sentence":"A","skill":"Grammar","difficulty":0.3}]`

	_, err := parseBatch(text, 2, models.MechanicMultipleChoiceText)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestParseBatch_InvalidJSON(t *testing.T) {
	_, err := parseBatch("not json", 0, models.MechanicWordPronunciation)
	if err == nil {
		t.Fatal("expected unmarshal error, got nil")
	}
}
