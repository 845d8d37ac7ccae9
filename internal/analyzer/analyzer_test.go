package analyzer

import (
	"context"
	"testing"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

func TestMockAnalyzer_ComputesAccuracyFromHistory(t *testing.T) {
	a := NewMockAnalyzer()
	enriched := models.EnrichedHistory{
		FinalLevel: 2,
		History: []models.AnsweredRecord{
			{Correct: true}, {Correct: true}, {Correct: false}, {Correct: true},
		},
	}

	report, err := a.Analyze(context.Background(), enriched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Placement.NovakidLevel != 2 {
		t.Errorf("expected mock placement to mirror FinalLevel, got %d", report.Placement.NovakidLevel)
	}
	if report.Placement.Confidence != 0.75 {
		t.Errorf("expected confidence 3/4=0.75, got %v", report.Placement.Confidence)
	}
	if !report.Validate() {
		t.Error("expected mock report to pass Validate()")
	}
}

func TestMockAnalyzer_FailNextNForcesFailureThenRecovers(t *testing.T) {
	a := NewMockAnalyzer()
	a.FailNextN = 2

	for i := 0; i < 2; i++ {
		_, err := a.Analyze(context.Background(), models.EnrichedHistory{})
		if err == nil {
			t.Fatalf("call %d: expected a forced failure", i)
		}
		if _, ok := err.(*models.AdvisorUnavailableError); !ok {
			t.Errorf("call %d: expected AdvisorUnavailableError, got %T", i, err)
		}
	}

	report, err := a.Analyze(context.Background(), models.EnrichedHistory{FinalLevel: 1})
	if err != nil {
		t.Fatalf("expected the 3rd call to succeed, got %v", err)
	}
	if report == nil {
		t.Fatal("expected a non-nil report on recovery")
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                      `{"a":1}`,
		"```json\n{\"a\":1}\n```":      `{"a":1}`,
		"```\n{\"a\":1}\n```":          `{"a":1}`,
	}
	for input, want := range cases {
		if got := stripCodeFences(input); got != want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseAdvisorReport_RoundTrip(t *testing.T) {
	raw := "```json\n" + `{
		"placement": {"novakid_level": 3, "confidence": 0.8, "cefr_equivalent": "A2", "level_justification": "x"},
		"skill_analysis": {
			"vocabulary": {"score": 0.7, "evidence": ["e1"]},
			"pronunciation": {"score": null, "evidence": ["insufficient-evidence"]},
			"grammar": {"score": 0.9, "evidence": ["e2"]}
		},
		"recommendations": {
			"immediate_focus": ["Pronunciation"],
			"strengths_to_build_on": ["Grammar"],
			"suggested_starting_point": "Begin at Novakid Level 3",
			"estimated_progress": "steady"
		}
	}` + "\n```"

	report, err := parseAdvisorReport(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Placement.NovakidLevel != 3 {
		t.Errorf("expected novakid_level 3, got %d", report.Placement.NovakidLevel)
	}
	if report.SkillAnalysis.Pronunciation.Score != nil {
		t.Errorf("expected pronunciation score to decode as nil, got %v", *report.SkillAnalysis.Pronunciation.Score)
	}
	if !report.Validate() {
		t.Error("expected round-tripped report to validate")
	}
}

func TestParseAdvisorReport_InvalidJSON(t *testing.T) {
	_, err := parseAdvisorReport("not json at all")
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
