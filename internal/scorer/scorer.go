// Package scorer implements the placement synthesis step: turning a
// session's answered history into a PlacementReport, with an optional
// Advisory Analyzer in the loop and a deterministic rule-based fallback
// that the Scorer never blocks end-of-test on. Grounded on the teacher's
// internal/generator/quality.go composite-scoring idiom and on
// original_source/lib/analyzer.py's analyze_results/simple_analysis split.
package scorer

import (
	"context"
	"fmt"
	"log"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// Analyzer is the Advisory Analyzer Interface from spec §4.5.
type Analyzer interface {
	Analyze(ctx context.Context, enriched models.EnrichedHistory) (*models.AdvisorReport, error)
}

// Score implements spec §4.4. When analyzer is non-nil and cfg.AdvisorEnabled
// is true, it is given a bounded time budget; any timeout, transport
// failure, or validation failure falls back to the deterministic report
// unchanged.
func Score(ctx context.Context, state *models.SessionState, cfg models.Config, analyzer Analyzer) models.PlacementReport {
	fallback := fallbackReport(state)

	if !cfg.AdvisorEnabled || analyzer == nil {
		return fallback
	}

	advisorCtx, cancel := context.WithTimeout(ctx, cfg.AdvisorTimeout)
	defer cancel()

	enriched := models.EnrichedHistory{
		History:    state.History,
		FinalLevel: state.CurrentLevel,
		QIndex:     state.QIndex,
		Warning:    state.Warning,
		Metadata:   state.Metadata,
	}

	// Advisor isolation (spec §8): on timeout, transport failure, or
	// validation failure the emitted report must be byte-identical to the
	// advisor-disabled fallback, so AnalysisError stays unset here too — the
	// failure is logged, not surfaced in the report.
	advReport, err := analyzer.Analyze(advisorCtx, enriched)
	if err != nil {
		log.Printf("[scorer] advisor unavailable: %v", (&models.AdvisorUnavailableError{Reason: "analyzer error", Err: err}).Error())
		return fallback
	}
	if !advReport.Validate() {
		log.Printf("[scorer] advisor returned an out-of-range report, using fallback")
		return fallback
	}

	merged := fallback
	merged.Placement = advReport.Placement
	merged.SkillAnalysis = advReport.SkillAnalysis
	merged.Recommendations = advReport.Recommendations
	merged.AnalysisMethod = models.AnalysisMethodAdvisor
	merged.AnalysisError = ""
	return merged
}

// fallbackReport is the deterministic, rule-based synthesis §4.4 mandates
// as the guaranteed path.
func fallbackReport(state *models.SessionState) models.PlacementReport {
	skillAnalysis := scoreSkills(state.History)
	levelAcc := perLevelAccuracy(state.History)
	placement := placementLevel(levelAcc, state.CurrentLevel)
	confidence := computeConfidence(state)

	report := models.PlacementReport{
		Placement: models.Placement{
			NovakidLevel:       placement,
			Confidence:         confidence,
			CEFREquivalent:     models.CEFRLabels[placement],
			LevelJustification: justify(placement, levelAcc, state),
		},
		SkillAnalysis:   skillAnalysis,
		Recommendations: buildRecommendations(placement, skillAnalysis),
		QuestionReview:  buildQuestionReview(state.History),
		AnalysisMethod:  models.AnalysisMethodFallback,
		Metadata:        state.Metadata,
	}
	return report
}

func scoreSkills(history []models.AnsweredRecord) models.SkillAnalysis {
	buckets := map[models.SkillBucket]*bucketTally{
		models.BucketVocabulary:    {},
		models.BucketPronunciation: {},
		models.BucketGrammar:       {},
	}

	for _, r := range history {
		b, ok := models.BucketOf(r.Skill)
		if !ok {
			continue
		}
		t := buckets[b]
		t.total++
		if r.Correct {
			t.correct++
		}
	}

	return models.SkillAnalysis{
		Vocabulary:    bucketScore(buckets[models.BucketVocabulary], "Vocabulary"),
		Pronunciation: bucketScore(buckets[models.BucketPronunciation], "Pronunciation"),
		Grammar:       bucketScore(buckets[models.BucketGrammar], "Grammar"),
	}
}

type bucketTally struct {
	correct int
	total   int
}

func bucketScore(t *bucketTally, label string) models.SkillScore {
	if t == nil || t.total == 0 {
		return models.SkillScore{Score: nil, Evidence: []string{"insufficient-evidence"}}
	}
	score := float64(t.correct) / float64(t.total)
	return models.SkillScore{
		Score:    &score,
		Evidence: []string{fmt.Sprintf("%s: %d/%d correct", label, t.correct, t.total)},
	}
}

type levelStat struct {
	accuracy float64
	count    int
}

func perLevelAccuracy(history []models.AnsweredRecord) map[int]levelStat {
	correct := map[int]int{}
	total := map[int]int{}
	for _, r := range history {
		total[r.AssignedLevel]++
		if r.Correct {
			correct[r.AssignedLevel]++
		}
	}
	out := map[int]levelStat{}
	for lvl, t := range total {
		out[lvl] = levelStat{accuracy: float64(correct[lvl]) / float64(t), count: t}
	}
	return out
}

// placementLevel implements §4.4: the highest level L with per-level
// accuracy >= 0.70 and at least 2 items, falling back to the session's
// ending current_level, capped by the best level actually attained.
func placementLevel(levelAcc map[int]levelStat, currentLevel int) int {
	best := -1
	for lvl := 5; lvl >= 0; lvl-- {
		stat, ok := levelAcc[lvl]
		if !ok {
			continue
		}
		if stat.accuracy >= 0.70 && stat.count >= 2 {
			best = lvl
			break
		}
	}
	if best >= 0 {
		return best
	}

	maxLvl := 0
	for lvl := range levelAcc {
		if lvl > maxLvl {
			maxLvl = lvl
		}
	}
	if currentLevel > maxLvl {
		return maxLvl
	}
	return currentLevel
}

// computeConfidence implements §4.4's confidence formula.
func computeConfidence(state *models.SessionState) float64 {
	const total = 15
	progress := float64(state.QIndex) / total
	if progress > 1 {
		progress = 1
	}
	conf := progress * state.OverallAccuracy()
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return conf
}

func justify(placement int, levelAcc map[int]levelStat, state *models.SessionState) string {
	stat, ok := levelAcc[placement]
	base := fmt.Sprintf("Placed at Novakid level %d based on %.0f%% accuracy across %d answered questions.",
		placement, state.OverallAccuracy()*100, state.QIndex)
	if ok {
		base = fmt.Sprintf("Placed at Novakid level %d: %.0f%% accuracy at that level (%d total answers).",
			placement, stat.accuracy*100, state.QIndex)
	}
	if state.Warning != "" {
		base += " " + state.Warning
	}
	return base
}

func buildRecommendations(placement int, skills models.SkillAnalysis) models.Recommendations {
	var immediate []string
	var strengths []string

	consider := func(label string, s models.SkillScore) {
		if s.Score == nil {
			return
		}
		if *s.Score < 0.6 {
			immediate = append(immediate, label)
		} else if *s.Score >= 0.8 {
			strengths = append(strengths, label)
		}
	}
	consider("Vocabulary", skills.Vocabulary)
	consider("Pronunciation", skills.Pronunciation)
	consider("Grammar", skills.Grammar)

	startingPoint := fmt.Sprintf("Begin at Novakid Level %d", placement)
	progress := "steady progress expected with regular practice"
	if placement == 0 {
		progress = "foundational skills need reinforcement before advancing"
	} else if placement >= 4 {
		progress = "ready for accelerated progression"
	}

	return models.Recommendations{
		ImmediateFocus:         immediate,
		StrengthsToBuildOn:     strengths,
		SuggestedStartingPoint: startingPoint,
		EstimatedProgress:      progress,
	}
}

func buildQuestionReview(history []models.AnsweredRecord) []models.QuestionReviewItem {
	out := make([]models.QuestionReviewItem, 0, len(history))
	for _, r := range history {
		out = append(out, models.QuestionReviewItem{
			QuestionID:    r.QuestionID,
			Mechanic:      r.Mechanic,
			AssignedLevel: r.AssignedLevel,
			Correct:       r.Correct,
		})
	}
	return out
}
