package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// systemPrompt mirrors the shape of original_source/lib/analyzer.py's
// prompt template: it pins the exact JSON contract the caller must honor.
func systemPrompt() string {
	return `You are an English-proficiency placement advisor for children aged 4-12.
You will be given a student's full answer history from an adaptive placement
test and must return a structured recommendation.

Respond with ONLY a JSON object matching exactly this shape, no prose, no
code fences:

{
  "placement": {"novakid_level": 0-5, "confidence": 0.0-1.0, "cefr_equivalent": "string", "level_justification": "string"},
  "skill_analysis": {
    "vocabulary": {"score": 0.0-1.0 or null, "evidence": ["string"]},
    "pronunciation": {"score": 0.0-1.0 or null, "evidence": ["string"]},
    "grammar": {"score": 0.0-1.0 or null, "evidence": ["string"]}
  },
  "recommendations": {
    "immediate_focus": ["string"],
    "strengths_to_build_on": ["string"],
    "suggested_starting_point": "string",
    "estimated_progress": "string"
  }
}`
}

func buildUserPrompt(enriched models.EnrichedHistory) (string, error) {
	payload, err := json.Marshal(enriched)
	if err != nil {
		return "", fmt.Errorf("marshal enriched history: %w", err)
	}
	return fmt.Sprintf("Student answer history:\n%s\n\nReturn the placement recommendation JSON now.", string(payload)), nil
}

// parseAdvisorReport strips code fences (LLMs routinely wrap JSON in
// ```json fences despite instructions) and unmarshals into an
// AdvisorReport, the same idiom as the teacher's parser.stripCodeFences +
// json.Unmarshal pairing.
func parseAdvisorReport(text string) (*models.AdvisorReport, error) {
	cleaned := stripCodeFences(text)

	var report models.AdvisorReport
	if err := json.Unmarshal([]byte(cleaned), &report); err != nil {
		return nil, fmt.Errorf("unmarshal advisor report: %w", err)
	}
	return &report, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// runCLI shells out to the claude CLI the same way the teacher's
// CLIClient.Generate does: system prompt as a flag, user prompt on stdin.
func runCLI(ctx context.Context, cliPath, systemPrompt, userPrompt string) (string, error) {
	cmd := exec.CommandContext(ctx,
		cliPath,
		"--print",
		"--output-format", "text",
		"--system-prompt", systemPrompt,
		"--max-turns", "1",
	)
	cmd.Stdin = strings.NewReader(userPrompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("claude CLI error: %w\nstderr: %s", err, stderr.String())
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", fmt.Errorf("claude CLI returned empty response")
	}
	return text, nil
}
