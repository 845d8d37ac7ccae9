// Package answercheck implements the pure per-mechanic answer-checking
// function from spec §6, grounded on original_source/lib/question_renderer.py's
// check_answer: a straight equality test for choice mechanics, a
// self-assessment pass-through for pronunciation.
package answercheck

import (
	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// Result is what the core needs out of an answer: correctness plus the
// timing the renderer reported.
type Result struct {
	Correct      bool
	ResponseTime float64
}

// Check dispatches on the question's mechanic. An answer shape mismatch is
// treated defensively as incorrect, per §7's InvalidAnswerShape policy —
// the caller is expected to also record the anomaly.
func Check(q models.Question, answer any, responseTime float64) (Result, error) {
	switch q.Mechanic {
	case models.MechanicWordPronunciation, models.MechanicSentencePronunciation:
		return checkPronunciation(q, answer, responseTime)
	case models.MechanicImageSingleChoice, models.MechanicMultipleChoiceText, models.MechanicAudioSingleChoice:
		return checkChoice(q, answer, responseTime)
	case models.MechanicSentenceScramble:
		return checkScramble(q, answer, responseTime)
	case models.MechanicAudioCategorySorting:
		return checkSort(q, answer, responseTime)
	default:
		return Result{Correct: false, ResponseTime: responseTime}, &models.InvalidAnswerShapeError{QuestionID: q.ID, Mechanic: q.Mechanic}
	}
}

// SelfAssessment is the renderer's reported pronunciation outcome.
type SelfAssessment string

const (
	SelfAssessmentWell SelfAssessment = "Well"
	SelfAssessmentOK   SelfAssessment = "OK"
	SelfAssessmentPoor SelfAssessment = "Poor"
)

// checkPronunciation passes when self-assessment is Well or OK. The
// renderer may send either a bool (true = passed) or one of the
// SelfAssessment strings; both shapes are accepted.
func checkPronunciation(q models.Question, answer any, responseTime float64) (Result, error) {
	switch v := answer.(type) {
	case bool:
		return Result{Correct: v, ResponseTime: responseTime}, nil
	case string:
		passed := SelfAssessment(v) == SelfAssessmentWell || SelfAssessment(v) == SelfAssessmentOK
		return Result{Correct: passed, ResponseTime: responseTime}, nil
	default:
		return Result{Correct: false, ResponseTime: responseTime}, &models.InvalidAnswerShapeError{QuestionID: q.ID, Mechanic: q.Mechanic}
	}
}

// checkChoice compares an integer option index against correct_answer.
func checkChoice(q models.Question, answer any, responseTime float64) (Result, error) {
	idx, ok := asInt(answer)
	if !ok {
		return Result{Correct: false, ResponseTime: responseTime}, &models.InvalidAnswerShapeError{QuestionID: q.ID, Mechanic: q.Mechanic}
	}
	return Result{Correct: idx == q.CorrectAnswer, ResponseTime: responseTime}, nil
}

// checkScramble compares an ordered list of indices against correct_order.
func checkScramble(q models.Question, answer any, responseTime float64) (Result, error) {
	order, ok := asIntSlice(answer)
	if !ok || len(order) != len(q.CorrectOrder) {
		return Result{Correct: false, ResponseTime: responseTime}, &models.InvalidAnswerShapeError{QuestionID: q.ID, Mechanic: q.Mechanic}
	}
	for i, v := range order {
		if v != q.CorrectOrder[i] {
			return Result{Correct: false, ResponseTime: responseTime}, nil
		}
	}
	return Result{Correct: true, ResponseTime: responseTime}, nil
}

// checkSort passes when >= 60% of items are placed in their correct
// category, per §6. Accepts a map of category -> item ids.
func checkSort(q models.Question, answer any, responseTime float64) (Result, error) {
	placement, ok := asCategoryMap(answer)
	if !ok {
		return Result{Correct: false, ResponseTime: responseTime}, &models.InvalidAnswerShapeError{QuestionID: q.ID, Mechanic: q.Mechanic}
	}

	want := make(map[string]string, len(q.SortItems))
	for _, item := range q.SortItems {
		want[item.ID] = item.Category
	}

	if len(want) == 0 {
		return Result{Correct: false, ResponseTime: responseTime}, &models.InvalidAnswerShapeError{QuestionID: q.ID, Mechanic: q.Mechanic}
	}

	correct := 0
	for category, ids := range placement {
		for _, id := range ids {
			if want[id] == category {
				correct++
			}
		}
	}

	pass := float64(correct)/float64(len(want)) >= 0.60
	return Result{Correct: pass, ResponseTime: responseTime}, nil
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asIntSlice(v any) ([]int, bool) {
	raw, ok := v.([]any)
	if !ok {
		if direct, ok := v.([]int); ok {
			return direct, true
		}
		return nil, false
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		n, ok := asInt(item)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func asCategoryMap(v any) (map[string][]string, bool) {
	raw, ok := v.(map[string]any)
	if !ok {
		if direct, ok := v.(map[string][]string); ok {
			return direct, true
		}
		return nil, false
	}
	out := make(map[string][]string, len(raw))
	for category, items := range raw {
		list, ok := items.([]any)
		if !ok {
			return nil, false
		}
		ids := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			ids = append(ids, s)
		}
		out[category] = ids
	}
	return out, true
}
