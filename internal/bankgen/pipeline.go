package bankgen

import (
	"context"
	"fmt"
	"log"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// QuestionsPerBatch mirrors generate_questions_prompt's fixed batch size of
// 10 questions per (level, mechanic) call.
const QuestionsPerBatch = 10

// mechanicsForLevel reproduces generate_questions()'s level-gated mechanic
// list, generalized from the original's 6-mechanic MVP set to all 7 by
// folding in audio-category-sorting at the same tier as the other
// level-2-and-up mechanics.
func mechanicsForLevel(level int) []models.Mechanic {
	var out []models.Mechanic
	if level >= 0 {
		out = append(out,
			models.MechanicWordPronunciation,
			models.MechanicAudioSingleChoice,
			models.MechanicSentencePronunciation,
		)
	}
	if level >= 1 {
		out = append(out,
			models.MechanicImageSingleChoice,
			models.MechanicSentenceScramble,
		)
	}
	if level >= 2 {
		out = append(out,
			models.MechanicMultipleChoiceText,
			models.MechanicAudioCategorySorting,
		)
	}

	allowed := out[:0]
	for _, m := range out {
		if models.MechanicAllowedAt(m, level) {
			allowed = append(allowed, m)
		}
	}
	return allowed
}

// GenerateBank drives the client across every level and every mechanic
// permitted at that level, mirroring generate_questions()'s nested loop and
// its per-(level, mechanic) try/fallback structure, generalized to fail the
// whole run on the first unrecoverable batch rather than silently writing a
// single sample question — a CLI tool invoked before a server starts is the
// right place to fail loud rather than ship a near-empty level.
func GenerateBank(ctx context.Context, client LLMClient) (models.Bank, error) {
	out := make(models.Bank)

	for level := 0; level <= 5; level++ {
		var levelQuestions []models.Question
		for _, mechanic := range mechanicsForLevel(level) {
			log.Printf("[bankgen] generating level %d, mechanic %s", level, mechanic)

			prompt, err := buildGenerationPrompt(level, mechanic, QuestionsPerBatch)
			if err != nil {
				return nil, fmt.Errorf("level %d mechanic %s: %w", level, mechanic, err)
			}

			raw, err := client.Generate(ctx, systemPrompt(), prompt)
			if err != nil {
				return nil, fmt.Errorf("level %d mechanic %s: generation failed: %w", level, mechanic, err)
			}

			batch, err := parseBatch(raw, level, mechanic)
			if err != nil {
				return nil, fmt.Errorf("level %d mechanic %s: %w", level, mechanic, err)
			}

			kept, dropped := FilterQuality(batch)
			if len(dropped) > 0 {
				log.Printf("[bankgen]   dropped %d/%d questions on structural quality", len(dropped), len(batch))
			}
			log.Printf("[bankgen]   got %d questions", len(kept))
			levelQuestions = append(levelQuestions, kept...)
		}
		out[level] = levelQuestions
	}

	return out, nil
}
