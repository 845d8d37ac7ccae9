package models

// AnsweredRecord is the immutable log entry written by the Adjustment
// Policy after every answered question.
type AnsweredRecord struct {
	QuestionID    string   `json:"question_id"`
	Mechanic      Mechanic `json:"mechanic"`
	AssignedLevel int      `json:"assigned_level"`
	Skill         Skill    `json:"skill"`
	Correct       bool     `json:"correct"`
	ResponseTime  float64  `json:"response_time"`
}

// CategoryTally tracks served questions per balancing category.
type CategoryTally struct {
	Audio int
	Text  int
}

// SessionState is the full per-student mutable state. It is owned
// exclusively by one logical session; nothing here is shared across
// sessions.
type SessionState struct {
	CurrentLevel int
	Momentum     float64

	// Window holds the last PerformanceWindowSize correctness outcomes,
	// oldest evicted first.
	Window []bool

	Streak int

	Used map[string]bool

	// MechanicHistory is a ring of the last 2 served mechanics, oldest
	// first.
	MechanicHistory []Mechanic

	CategoryTally CategoryTally

	History []AnsweredRecord

	CooldownRemaining int
	CalibrationIndex  int
	QIndex            int

	// Metadata is an optional request-scoped passthrough, echoed back
	// verbatim in the Placement Report. It is never persisted across
	// sessions.
	Metadata map[string]string

	// Warning is set when OutOfQuestions forced an early end; it is
	// surfaced in the report's justification.
	Warning string
}

// NewSessionState returns a freshly initialized session at the defaults
// mandated by spec §3: current_level=1, momentum=0, empty window/history.
func NewSessionState(metadata map[string]string) *SessionState {
	return &SessionState{
		CurrentLevel:      1,
		Momentum:          0,
		Window:            nil,
		Streak:            0,
		Used:              make(map[string]bool),
		MechanicHistory:   nil,
		History:           nil,
		CooldownRemaining: 0,
		CalibrationIndex:  0,
		QIndex:            0,
		Metadata:          metadata,
	}
}

// PushWindow appends a correctness outcome, evicting the oldest entry once
// the window exceeds windowSize.
func (s *SessionState) PushWindow(correct bool, windowSize int) {
	s.Window = append(s.Window, correct)
	if len(s.Window) > windowSize {
		s.Window = s.Window[len(s.Window)-windowSize:]
	}
}

// PushMechanic appends a mechanic onto the 2-entry recency ring.
func (s *SessionState) PushMechanic(m Mechanic) {
	s.MechanicHistory = append(s.MechanicHistory, m)
	if len(s.MechanicHistory) > 2 {
		s.MechanicHistory = s.MechanicHistory[len(s.MechanicHistory)-2:]
	}
}

// RecentMechanics reports whether m appears anywhere in the recency ring.
func (s *SessionState) RecentMechanics(m Mechanic) bool {
	for _, h := range s.MechanicHistory {
		if h == m {
			return true
		}
	}
	return false
}

// WindowAccuracy computes accuracy over the last n entries of the window
// (or fewer, if the window is shorter). n <= 0 returns 0.
func (s *SessionState) WindowAccuracy(n int) float64 {
	if n <= 0 || len(s.Window) == 0 {
		return 0
	}
	if n > len(s.Window) {
		n = len(s.Window)
	}
	slice := s.Window[len(s.Window)-n:]
	correct := 0
	for _, c := range slice {
		if c {
			correct++
		}
	}
	return float64(correct) / float64(n)
}

// OverallAccuracy computes accuracy across the full answered history.
func (s *SessionState) OverallAccuracy() float64 {
	if len(s.History) == 0 {
		return 0
	}
	correct := 0
	for _, r := range s.History {
		if r.Correct {
			correct++
		}
	}
	return float64(correct) / float64(len(s.History))
}

// RecentIncorrectCount counts incorrect answers in the last n history
// entries (or fewer).
func (s *SessionState) RecentIncorrectCount(n int) int {
	if n > len(s.History) {
		n = len(s.History)
	}
	slice := s.History[len(s.History)-n:]
	wrong := 0
	for _, r := range slice {
		if !r.Correct {
			wrong++
		}
	}
	return wrong
}

// Phase names the state-machine bucket q_index currently falls in.
type Phase string

const (
	PhaseCalibrating Phase = "calibrating"
	PhaseAdaptive    Phase = "adaptive"
	PhaseComplete    Phase = "complete"
)

// CurrentPhase derives the session's phase purely from q_index and the
// configured totals.
func (s *SessionState) CurrentPhase(cfg Config) Phase {
	switch {
	case s.QIndex < cfg.CalibrationQuestions:
		return PhaseCalibrating
	case s.QIndex < cfg.QuestionsPerTest:
		return PhaseAdaptive
	default:
		return PhaseComplete
	}
}

// DebugSnapshot is a developer-facing introspection view of session state,
// modeled on the original's sidebar debug panel. Not part of the graded
// placement flow.
type DebugSnapshot struct {
	CurrentLevel      int           `json:"current_level"`
	Momentum          float64       `json:"momentum"`
	Streak            int           `json:"streak"`
	Window            []bool        `json:"window"`
	QIndex            int           `json:"q_index"`
	CalibrationIndex  int           `json:"calibration_index"`
	CooldownRemaining int           `json:"cooldown_remaining"`
	Phase             Phase         `json:"phase"`
	CategoryTally     CategoryTally `json:"category_tally"`
}

// Snapshot builds a DebugSnapshot from the current state.
func (s *SessionState) Snapshot(cfg Config) DebugSnapshot {
	windowCopy := make([]bool, len(s.Window))
	copy(windowCopy, s.Window)
	return DebugSnapshot{
		CurrentLevel:      s.CurrentLevel,
		Momentum:          s.Momentum,
		Streak:            s.Streak,
		Window:            windowCopy,
		QIndex:            s.QIndex,
		CalibrationIndex:  s.CalibrationIndex,
		CooldownRemaining: s.CooldownRemaining,
		Phase:             s.CurrentPhase(cfg),
		CategoryTally:     s.CategoryTally,
	}
}
