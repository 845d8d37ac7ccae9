// Package bank loads the immutable question bank the placement engine
// serves from. Mirrors the teacher's decode-then-structurally-validate
// idiom from internal/generator/parser.go, adapted to the bank's
// level-keyed blob instead of a single generation batch.
package bank

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// Load reads a level-keyed JSON blob (keys "0".."5", values arrays of
// Question) and returns the validated Bank, or BankMalformed /
// BankLevelGap on failure.
func Load(r io.Reader) (models.Bank, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &models.BankMalformedError{Reason: fmt.Sprintf("read failed: %v", err)}
	}

	var keyed map[string][]models.Question
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, &models.BankMalformedError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}

	out := make(models.Bank)
	for key, questions := range keyed {
		level, err := strconv.Atoi(key)
		if err != nil {
			return nil, &models.BankMalformedError{Reason: fmt.Sprintf("non-numeric level key %q", key)}
		}
		if level < 0 || level > 5 {
			return nil, &models.BankMalformedError{Reason: fmt.Sprintf("level key %d out of range 0..5", level)}
		}
		for i := range questions {
			questions[i].Level = level
			if err := validateQuestion(&questions[i]); err != nil {
				return nil, err
			}
		}
		out[level] = questions
	}

	for level := 0; level <= 5; level++ {
		if len(out[level]) == 0 {
			return nil, &models.BankLevelGapError{Level: level}
		}
	}

	return out, nil
}

// ValidateQuestion is the exported form of the loader's structural check,
// reused by cmd/bankgen to validate freshly generated questions before they
// are written into a bank file.
func ValidateQuestion(q *models.Question) error {
	return validateQuestion(q)
}

// validateQuestion checks the minimum required fields for a question's
// mechanic, per the bank loader's contract in §4.1.
func validateQuestion(q *models.Question) error {
	if q.ID == "" {
		return &models.BankMalformedError{Reason: "question missing id"}
	}
	if !models.MechanicAllowedAt(q.Mechanic, q.Level) {
		return &models.BankMalformedError{
			Reason: fmt.Sprintf("question %s: mechanic %q not permitted at level %d", q.ID, q.Mechanic, q.Level),
		}
	}
	if q.Skill == "" {
		return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: missing skill", q.ID)}
	}
	if _, ok := models.BucketOf(q.Skill); !ok {
		return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: unrecognized skill %q", q.ID, q.Skill)}
	}

	switch q.Mechanic {
	case models.MechanicWordPronunciation:
		if q.TargetWord == "" {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: missing target_word", q.ID)}
		}
	case models.MechanicSentencePronunciation:
		if q.TargetSentence == "" {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: missing target_sentence", q.ID)}
		}
	case models.MechanicImageSingleChoice, models.MechanicMultipleChoiceText:
		if len(q.Options) < 2 {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: needs >=2 options", q.ID)}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: correct_answer out of range", q.ID)}
		}
	case models.MechanicAudioSingleChoice:
		if len(q.ImageOptions) < 2 {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: needs >=2 image_options", q.ID)}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.ImageOptions) {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: correct_answer out of range", q.ID)}
		}
	case models.MechanicAudioCategorySorting:
		if len(q.Categories) < 2 {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: needs >=2 categories", q.ID)}
		}
		if len(q.SortItems) == 0 {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: missing sort_items", q.ID)}
		}
	case models.MechanicSentenceScramble:
		if len(q.WordOptions) < 2 {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: needs >=2 word_options", q.ID)}
		}
		if len(q.CorrectOrder) != len(q.WordOptions) {
			return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: correct_order length mismatch", q.ID)}
		}
	default:
		return &models.BankMalformedError{Reason: fmt.Sprintf("question %s: unrecognized mechanic %q", q.ID, q.Mechanic)}
	}

	return nil
}

// UnusedAt returns the questions at a level not present in used.
func UnusedAt(b models.Bank, level int, used map[string]bool) []models.Question {
	all := b[level]
	out := make([]models.Question, 0, len(all))
	for _, q := range all {
		if !used[q.ID] {
			out = append(out, q)
		}
	}
	return out
}
