package models

// Placement is the headline result of a placement report.
type Placement struct {
	NovakidLevel       int     `json:"novakid_level"`
	Confidence         float64 `json:"confidence"`
	CEFREquivalent     string  `json:"cefr_equivalent"`
	LevelJustification string  `json:"level_justification"`
}

// SkillScore is a single bucket's score; Score is nil when the bucket has
// zero evidence.
type SkillScore struct {
	Score    *float64 `json:"score"`
	Evidence []string `json:"evidence"`
}

// SkillAnalysis holds the three scoring buckets from spec §4.4.
type SkillAnalysis struct {
	Vocabulary    SkillScore `json:"vocabulary"`
	Pronunciation SkillScore `json:"pronunciation"`
	Grammar       SkillScore `json:"grammar"`
}

// Recommendations is the prose guidance block, either advisor-authored or
// rule-based fallback text.
type Recommendations struct {
	ImmediateFocus         []string `json:"immediate_focus"`
	StrengthsToBuildOn     []string `json:"strengths_to_build_on"`
	SuggestedStartingPoint string   `json:"suggested_starting_point"`
	EstimatedProgress      string   `json:"estimated_progress"`
}

// QuestionReviewItem is one row of the per-question review supplement,
// letting a renderer build a results walkthrough without re-deriving it
// from raw history.
type QuestionReviewItem struct {
	QuestionID    string   `json:"question_id"`
	Mechanic      Mechanic `json:"mechanic"`
	AssignedLevel int      `json:"assigned_level"`
	Correct       bool     `json:"correct"`
}

// AnalysisMethod tags whether a report's placement/skills/recommendations
// came from the Advisory Analyzer or the deterministic fallback.
type AnalysisMethod string

const (
	AnalysisMethodAdvisor  AnalysisMethod = "advisor"
	AnalysisMethodFallback AnalysisMethod = "fallback"
)

// PlacementReport is the shape emitted at the end of a session, per §6.
type PlacementReport struct {
	Placement       Placement       `json:"placement"`
	SkillAnalysis   SkillAnalysis   `json:"skill_analysis"`
	Recommendations Recommendations `json:"recommendations"`

	QuestionReview []QuestionReviewItem `json:"question_review,omitempty"`
	AnalysisMethod AnalysisMethod       `json:"analysis_method"`
	AnalysisError  string               `json:"analysis_error,omitempty"`
	Metadata       map[string]string    `json:"metadata,omitempty"`
}

// EnrichedHistory is the payload handed to the Advisory Analyzer: the full
// answered history plus enough session context to let the analyzer derive
// its own placement without reaching back into engine internals.
type EnrichedHistory struct {
	History      []AnsweredRecord  `json:"history"`
	FinalLevel   int               `json:"final_level"`
	QIndex       int               `json:"q_index"`
	Warning      string            `json:"warning,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// AdvisorReport is the shape the Advisory Analyzer is expected to return.
// It must validate (level in 0..5, confidence in [0,1]) before the Scorer
// will let it replace the fallback.
type AdvisorReport struct {
	Placement       Placement       `json:"placement"`
	SkillAnalysis   SkillAnalysis   `json:"skill_analysis"`
	Recommendations Recommendations `json:"recommendations"`
}

// Validate checks the structural bounds the Scorer requires before trusting
// an AdvisorReport verbatim.
func (r *AdvisorReport) Validate() bool {
	if r == nil {
		return false
	}
	if r.Placement.NovakidLevel < 0 || r.Placement.NovakidLevel > 5 {
		return false
	}
	if r.Placement.Confidence < 0 || r.Placement.Confidence > 1 {
		return false
	}
	return true
}
