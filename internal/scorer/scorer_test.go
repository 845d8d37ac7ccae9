package scorer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// mockAnalyzer lets tests force a fixed number of consecutive failures
// before returning a valid report, to exercise the fallback-equivalence
// property independent of any real advisor transport.
type mockAnalyzer struct {
	report *models.AdvisorReport
	failN  int
	calls  int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, enriched models.EnrichedHistory) (*models.AdvisorReport, error) {
	m.calls++
	if m.failN > 0 {
		m.failN--
		return nil, errors.New("advisor unreachable")
	}
	return m.report, nil
}

func rec(skill models.Skill, level int, correct bool) models.AnsweredRecord {
	return models.AnsweredRecord{QuestionID: "q", Skill: skill, AssignedLevel: level, Correct: correct}
}

func TestScoreSkills_InsufficientEvidenceIsNil(t *testing.T) {
	analysis := scoreSkills(nil)
	if analysis.Vocabulary.Score != nil {
		t.Error("expected nil vocabulary score with no evidence")
	}
	if analysis.Vocabulary.Evidence[0] != "insufficient-evidence" {
		t.Errorf("expected insufficient-evidence marker, got %v", analysis.Vocabulary.Evidence)
	}
}

func TestScoreSkills_ComputesPerBucketAccuracy(t *testing.T) {
	history := []models.AnsweredRecord{
		rec(models.SkillGrammar, 2, true),
		rec(models.SkillGrammar, 2, true),
		rec(models.SkillGrammar, 2, false),
		rec(models.SkillVocabulary, 1, true),
		rec(models.SkillReading, 1, true),
	}
	analysis := scoreSkills(history)

	if analysis.Grammar.Score == nil || *analysis.Grammar.Score != 2.0/3.0 {
		t.Errorf("expected grammar accuracy 2/3, got %v", analysis.Grammar.Score)
	}
	if analysis.Vocabulary.Score == nil || *analysis.Vocabulary.Score != 1.0 {
		t.Errorf("expected vocabulary (vocab+reading) accuracy 1.0, got %v", analysis.Vocabulary.Score)
	}
	if analysis.Pronunciation.Score != nil {
		t.Errorf("expected pronunciation still nil with no evidence, got %v", analysis.Pronunciation.Score)
	}
}

func TestPlacementLevel_RequiresAccuracyAndMinimumCount(t *testing.T) {
	levelAcc := map[int]levelStat{
		3: {accuracy: 0.75, count: 1}, // fails the count>=2 floor
		2: {accuracy: 0.80, count: 3},
		1: {accuracy: 1.0, count: 5},
	}
	got := placementLevel(levelAcc, 3)
	if got != 2 {
		t.Errorf("expected placement to fall back to level 2 (level 3 under-evidenced), got %d", got)
	}
}

func TestPlacementLevel_NoQualifyingLevelFallsBackToCurrent(t *testing.T) {
	levelAcc := map[int]levelStat{
		2: {accuracy: 0.40, count: 5},
	}
	got := placementLevel(levelAcc, 2)
	if got != 2 {
		t.Errorf("expected fallback to current level 2, got %d", got)
	}

	got2 := placementLevel(levelAcc, 4)
	if got2 != 2 {
		t.Errorf("expected fallback capped at max attained level 2, got %d", got2)
	}
}

func TestComputeConfidence_ScalesWithProgressAndAccuracy(t *testing.T) {
	state := models.NewSessionState(nil)
	state.QIndex = 15
	state.History = []models.AnsweredRecord{
		rec(models.SkillGrammar, 1, true),
		rec(models.SkillGrammar, 1, true),
	}
	got := computeConfidence(state)
	if got != 1.0 {
		t.Errorf("expected confidence 1.0 at full progress and accuracy, got %v", got)
	}

	state2 := models.NewSessionState(nil)
	state2.QIndex = 3
	state2.History = []models.AnsweredRecord{
		rec(models.SkillGrammar, 1, true),
		rec(models.SkillGrammar, 1, true),
	}
	got2 := computeConfidence(state2)
	want2 := (3.0 / 15.0) * 1.0
	if got2 != want2 {
		t.Errorf("expected confidence %v at partial progress, got %v", want2, got2)
	}
}

func TestScore_AdvisorDisabledUsesFallback(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.AdvisorEnabled = false
	state := models.NewSessionState(nil)
	state.History = []models.AnsweredRecord{rec(models.SkillGrammar, 1, true)}

	analyzer := &mockAnalyzer{report: &models.AdvisorReport{Placement: models.Placement{NovakidLevel: 3, Confidence: 0.9}}}
	report := Score(context.Background(), state, cfg, analyzer)

	if report.AnalysisMethod != models.AnalysisMethodFallback {
		t.Errorf("expected fallback method when advisor disabled, got %v", report.AnalysisMethod)
	}
	if analyzer.calls != 0 {
		t.Errorf("expected analyzer not to be called when disabled, got %d calls", analyzer.calls)
	}
}

func TestScore_AdvisorSuccessOverridesPlacement(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.AdvisorEnabled = true
	state := models.NewSessionState(nil)
	state.History = []models.AnsweredRecord{rec(models.SkillGrammar, 1, true)}

	advised := &models.AdvisorReport{
		Placement:     models.Placement{NovakidLevel: 3, Confidence: 0.9, CEFREquivalent: "A2"},
		SkillAnalysis: models.SkillAnalysis{},
		Recommendations: models.Recommendations{SuggestedStartingPoint: "Begin at Novakid Level 3"},
	}
	analyzer := &mockAnalyzer{report: advised}
	report := Score(context.Background(), state, cfg, analyzer)

	if report.AnalysisMethod != models.AnalysisMethodAdvisor {
		t.Errorf("expected advisor method on success, got %v", report.AnalysisMethod)
	}
	if report.Placement.NovakidLevel != 3 {
		t.Errorf("expected advisor placement to override, got %d", report.Placement.NovakidLevel)
	}
	if report.AnalysisError != "" {
		t.Errorf("expected no analysis error on success, got %q", report.AnalysisError)
	}
}

// TestScore_AdvisorFailureFallsBackButKeepsFallbackPlacement exercises the
// advisor-isolation invariant (spec §8 Scenario 6): on advisor failure the
// emitted report must be byte-identical to the deterministic fallback
// produced from the same history, not merely placement-equal.
func TestScore_AdvisorFailureFallsBackButKeepsFallbackPlacement(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.AdvisorEnabled = true
	state := models.NewSessionState(nil)
	state.CurrentLevel = 2
	state.History = []models.AnsweredRecord{
		rec(models.SkillGrammar, 2, true),
		rec(models.SkillGrammar, 2, true),
	}

	analyzer := &mockAnalyzer{failN: 1}
	withFailure := Score(context.Background(), state, cfg, analyzer)

	fallbackOnly := fallbackReport(state)

	if !reflect.DeepEqual(withFailure, fallbackOnly) {
		t.Errorf("expected advisor failure to be byte-identical to the deterministic fallback: got %+v want %+v",
			withFailure, fallbackOnly)
	}
	if withFailure.AnalysisMethod != models.AnalysisMethodFallback {
		t.Errorf("expected fallback method on advisor error, got %v", withFailure.AnalysisMethod)
	}
	if withFailure.AnalysisError != "" {
		t.Errorf("expected no analysis error on advisor failure, got %q", withFailure.AnalysisError)
	}
}

// TestScore_AdvisorInvalidReportFallsBack mirrors the same isolation
// invariant for the validation-failure path.
func TestScore_AdvisorInvalidReportFallsBack(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.AdvisorEnabled = true
	state := models.NewSessionState(nil)
	state.History = []models.AnsweredRecord{rec(models.SkillGrammar, 1, true)}

	invalid := &models.AdvisorReport{Placement: models.Placement{NovakidLevel: 9, Confidence: 0.5}}
	analyzer := &mockAnalyzer{report: invalid}
	report := Score(context.Background(), state, cfg, analyzer)

	fallbackOnly := fallbackReport(state)

	if !reflect.DeepEqual(report, fallbackOnly) {
		t.Errorf("expected an out-of-range advisor report to fall back byte-identically: got %+v want %+v", report, fallbackOnly)
	}
	if report.AnalysisMethod != models.AnalysisMethodFallback {
		t.Errorf("expected fallback on out-of-range advisor report, got %v", report.AnalysisMethod)
	}
	if report.AnalysisError != "" {
		t.Errorf("expected no analysis error surfaced for an invalid advisor report, got %q", report.AnalysisError)
	}
}

func TestBuildRecommendations_BucketsByScoreThresholds(t *testing.T) {
	low := 0.4
	high := 0.9
	skills := models.SkillAnalysis{
		Vocabulary:    models.SkillScore{Score: &low},
		Pronunciation: models.SkillScore{Score: &high},
		Grammar:       models.SkillScore{Score: nil},
	}
	recs := buildRecommendations(3, skills)

	if len(recs.ImmediateFocus) != 1 || recs.ImmediateFocus[0] != "Vocabulary" {
		t.Errorf("expected Vocabulary flagged for immediate focus, got %v", recs.ImmediateFocus)
	}
	if len(recs.StrengthsToBuildOn) != 1 || recs.StrengthsToBuildOn[0] != "Pronunciation" {
		t.Errorf("expected Pronunciation flagged as a strength, got %v", recs.StrengthsToBuildOn)
	}
}

func TestBuildQuestionReview_PreservesOrderAndFields(t *testing.T) {
	history := []models.AnsweredRecord{
		{QuestionID: "a", Mechanic: models.MechanicWordPronunciation, AssignedLevel: 1, Correct: true},
		{QuestionID: "b", Mechanic: models.MechanicMultipleChoiceText, AssignedLevel: 2, Correct: false},
	}
	review := buildQuestionReview(history)
	if len(review) != 2 || review[0].QuestionID != "a" || review[1].QuestionID != "b" {
		t.Errorf("expected question review to preserve order, got %v", review)
	}
}
