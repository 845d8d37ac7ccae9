package models

import "time"

// Config holds the process-wide, startup-time recognized options from §6.
type Config struct {
	QuestionsPerTest      int
	CalibrationQuestions  int
	PerformanceWindowSize int
	LevelUpThreshold      float64
	LevelDownThreshold    float64
	StrongJumpAccuracy    float64
	StrongJumpStreak      int
	AdjustCooldown        int
	AdvisorTimeout        time.Duration
	AdvisorEnabled        bool
}

// DefaultConfig returns the literal values named in spec §6.
func DefaultConfig() Config {
	return Config{
		QuestionsPerTest:      15,
		CalibrationQuestions:  3,
		PerformanceWindowSize: 5,
		LevelUpThreshold:      0.75,
		LevelDownThreshold:    0.30,
		StrongJumpAccuracy:    0.90,
		StrongJumpStreak:      4,
		AdjustCooldown:        2,
		AdvisorTimeout:        30 * time.Second,
		AdvisorEnabled:        false,
	}
}
