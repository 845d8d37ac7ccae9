package engine

import "github.com/chesnokovivan/novakid-placement-test/internal/models"

// Update implements spec §4.3: after each answer, push the outcome into
// the rolling state, then run the level-adjustment rule cascade unless
// cooldown is still active.
func Update(state *models.SessionState, record models.AnsweredRecord, cfg models.Config) {
	state.PushWindow(record.Correct, cfg.PerformanceWindowSize)
	state.History = append(state.History, record)
	if record.Correct {
		state.Streak++
	} else {
		state.Streak = 0
	}

	if record.Correct {
		state.Momentum += 0.3
	} else {
		state.Momentum -= 0.5
	}
	state.Momentum = clampFloat(state.Momentum, -2.0, 2.0)

	switch models.CategoryOf(record.Mechanic) {
	case models.CategoryAudio:
		state.CategoryTally.Audio++
	default:
		state.CategoryTally.Text++
	}

	state.PushMechanic(record.Mechanic)
	state.QIndex++

	if state.QIndex <= cfg.CalibrationQuestions {
		// Calibration answers update rolling state but never trigger an
		// adjustment or consume cooldown, per §4.2.
		return
	}

	if state.CooldownRemaining > 0 {
		state.CooldownRemaining--
		state.CurrentLevel = clampInt(state.CurrentLevel, 0, 5)
		return
	}

	shortAcc := state.WindowAccuracy(3)

	applyRuleCascade(state, cfg, shortAcc)

	state.CurrentLevel = clampInt(state.CurrentLevel, 0, 5)
}

// applyRuleCascade fires the first matching rule, top to bottom, per the
// ordering spelled out in §4.3.
func applyRuleCascade(state *models.SessionState, cfg models.Config, shortAcc float64) {
	switch {
	case state.CurrentLevel == 4 && state.QIndex <= 10 && state.Streak >= 2 && shortAcc >= 0.85:
		state.CurrentLevel = 5
		state.CooldownRemaining = cfg.AdjustCooldown

	case shortAcc >= cfg.StrongJumpAccuracy && state.Streak >= cfg.StrongJumpStreak && state.CurrentLevel <= 3:
		state.CurrentLevel += 2
		state.CooldownRemaining = cfg.AdjustCooldown

	case shortAcc >= cfg.LevelUpThreshold && state.Streak >= 3 && state.CurrentLevel < 5:
		state.CurrentLevel++
		state.CooldownRemaining = cfg.AdjustCooldown

	case state.CurrentLevel == 5 && state.RecentIncorrectCount(4) >= 3:
		state.CurrentLevel = 4
		state.CooldownRemaining = cfg.AdjustCooldown

	case shortAcc <= cfg.LevelDownThreshold && state.CurrentLevel > 0:
		state.CurrentLevel--
		state.CooldownRemaining = cfg.AdjustCooldown
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
