package bankgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chesnokovivan/novakid-placement-test/internal/bank"
	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// stripCodeFences removes a ```json ... ``` or ``` ... ``` wrapper, the same
// cleanup the teacher's generator package (and generate_questions.py itself)
// apply before unmarshaling model output.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "```json") {
		parts := strings.SplitN(s, "```json", 2)
		if len(parts) == 2 {
			s = strings.SplitN(parts[1], "```", 2)[0]
		}
	} else if strings.Contains(s, "```") {
		parts := strings.SplitN(s, "```", 2)
		if len(parts) == 2 {
			s = strings.SplitN(parts[1], "```", 2)[0]
		}
	}
	return strings.TrimSpace(s)
}

// parseBatch unmarshals one LLM response into a batch of questions for the
// requested level/mechanic, stamps Level and Mechanic defensively, and
// structurally validates each one with the same rules the server-side
// bank loader enforces, so a malformed item is caught at generation time
// rather than surfacing later in bank.Load.
func parseBatch(text string, level int, mechanic models.Mechanic) ([]models.Question, error) {
	cleaned := stripCodeFences(text)

	var questions []models.Question
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("unmarshal question batch: %w", err)
	}

	out := make([]models.Question, 0, len(questions))
	seen := make(map[string]bool, len(questions))
	for i := range questions {
		q := questions[i]
		q.Level = level
		if q.Mechanic == "" {
			q.Mechanic = mechanic
		}
		if q.Mechanic != mechanic {
			return nil, fmt.Errorf("question %s: expected mechanic %q, got %q", q.ID, mechanic, q.Mechanic)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("duplicate question id %q in batch", q.ID)
		}
		seen[q.ID] = true

		if err := bank.ValidateQuestion(&q); err != nil {
			return nil, fmt.Errorf("generated question failed validation: %w", err)
		}
		out = append(out, q)
	}
	return out, nil
}
