package bankgen

import (
	"context"
	"testing"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

func TestMechanicsForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  []models.Mechanic
	}{
		{0, []models.Mechanic{models.MechanicWordPronunciation}},
		{1, []models.Mechanic{
			models.MechanicWordPronunciation,
			models.MechanicAudioSingleChoice,
			models.MechanicImageSingleChoice,
		}},
	}

	for _, tt := range tests {
		got := mechanicsForLevel(tt.level)
		gotSet := make(map[models.Mechanic]bool, len(got))
		for _, m := range got {
			gotSet[m] = true
		}
		for _, want := range tt.want {
			if !gotSet[want] {
				t.Errorf("level %d: expected mechanic %s in %v", tt.level, want, got)
			}
		}
		for _, m := range got {
			if !models.MechanicAllowedAt(m, tt.level) {
				t.Errorf("level %d: mechanic %s returned but not curriculum-allowed", tt.level, m)
			}
		}
	}
}

func TestGenerateBank_WithMockClient(t *testing.T) {
	client := &mockClient{}
	bank, err := GenerateBank(context.Background(), client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for level := 0; level <= 5; level++ {
		if len(bank[level]) == 0 {
			t.Errorf("level %d: expected generated questions, got none", level)
		}
		for _, q := range bank[level] {
			if q.Level != level {
				t.Errorf("level %d: question %s stamped with level %d", level, q.ID, q.Level)
			}
		}
	}
}
