// Package config loads the process-wide options from spec §6. Env vars
// win over an optional YAML overlay file, the same "env wins over file"
// 12-factor idiom the teacher's generator/database packages already use
// for their own os.Getenv-driven construction.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// fileOverlay is the optional YAML shape a config file may supply;
// fields are pointers so "unset" is distinguishable from "zero".
type fileOverlay struct {
	QuestionsPerTest      *int     `yaml:"questions_per_test"`
	CalibrationQuestions  *int     `yaml:"calibration_questions"`
	PerformanceWindowSize *int     `yaml:"performance_window_size"`
	LevelUpThreshold      *float64 `yaml:"level_up_threshold"`
	LevelDownThreshold    *float64 `yaml:"level_down_threshold"`
	StrongJumpAccuracy    *float64 `yaml:"strong_jump_accuracy"`
	StrongJumpStreak      *int     `yaml:"strong_jump_streak"`
	AdjustCooldown        *int     `yaml:"adjust_cooldown"`
	AdvisorTimeoutSeconds *int     `yaml:"advisor_timeout_seconds"`
	AdvisorEnabled        *bool    `yaml:"advisor_enabled"`
}

// Load builds a Config starting from DefaultConfig, applying an optional
// YAML overlay (path from CONFIG_FILE), then letting individual env vars
// override whatever the file set.
func Load() (models.Config, error) {
	cfg := models.DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		overlay, err := loadOverlay(path)
		if err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
		applyOverlay(&cfg, overlay)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadOverlay(path string) (*fileOverlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, err
	}
	return &overlay, nil
}

func applyOverlay(cfg *models.Config, o *fileOverlay) {
	if o.QuestionsPerTest != nil {
		cfg.QuestionsPerTest = *o.QuestionsPerTest
	}
	if o.CalibrationQuestions != nil {
		cfg.CalibrationQuestions = *o.CalibrationQuestions
	}
	if o.PerformanceWindowSize != nil {
		cfg.PerformanceWindowSize = *o.PerformanceWindowSize
	}
	if o.LevelUpThreshold != nil {
		cfg.LevelUpThreshold = *o.LevelUpThreshold
	}
	if o.LevelDownThreshold != nil {
		cfg.LevelDownThreshold = *o.LevelDownThreshold
	}
	if o.StrongJumpAccuracy != nil {
		cfg.StrongJumpAccuracy = *o.StrongJumpAccuracy
	}
	if o.StrongJumpStreak != nil {
		cfg.StrongJumpStreak = *o.StrongJumpStreak
	}
	if o.AdjustCooldown != nil {
		cfg.AdjustCooldown = *o.AdjustCooldown
	}
	if o.AdvisorTimeoutSeconds != nil {
		cfg.AdvisorTimeout = time.Duration(*o.AdvisorTimeoutSeconds) * time.Second
	}
	if o.AdvisorEnabled != nil {
		cfg.AdvisorEnabled = *o.AdvisorEnabled
	}
}

func applyEnv(cfg *models.Config) {
	if v, ok := getEnvInt("QUESTIONS_PER_TEST"); ok {
		cfg.QuestionsPerTest = v
	}
	if v, ok := getEnvInt("CALIBRATION_QUESTIONS"); ok {
		cfg.CalibrationQuestions = v
	}
	if v, ok := getEnvInt("PERFORMANCE_WINDOW_SIZE"); ok {
		cfg.PerformanceWindowSize = v
	}
	if v, ok := getEnvFloat("LEVEL_UP_THRESHOLD"); ok {
		cfg.LevelUpThreshold = v
	}
	if v, ok := getEnvFloat("LEVEL_DOWN_THRESHOLD"); ok {
		cfg.LevelDownThreshold = v
	}
	if v, ok := getEnvFloat("STRONG_JUMP_ACCURACY"); ok {
		cfg.StrongJumpAccuracy = v
	}
	if v, ok := getEnvInt("STRONG_JUMP_STREAK"); ok {
		cfg.StrongJumpStreak = v
	}
	if v, ok := getEnvInt("ADJUST_COOLDOWN"); ok {
		cfg.AdjustCooldown = v
	}
	if v, ok := getEnvInt("ADVISOR_TIMEOUT_SECONDS"); ok {
		cfg.AdvisorTimeout = time.Duration(v) * time.Second
	}
	if v, ok := getEnvBool("ADVISOR_ENABLED"); ok {
		cfg.AdvisorEnabled = v
	}
}

func getEnvInt(key string) (int, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvFloat(key string) (float64, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(key string) (bool, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
