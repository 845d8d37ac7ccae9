// Package engine implements the Selection and Adjustment policies that
// drive one placement session: picking the next question and mutating
// session state after each answer.
package engine

import (
	"math"
	"sort"

	"github.com/chesnokovivan/novakid-placement-test/internal/bank"
	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// RNG is the injected random source. *math/rand.Rand satisfies this,
// letting tests pin a seed for deterministic selection, per spec §5.
type RNG interface {
	Intn(n int) int
	Float64() float64
}

var calibrationLevels = []int{0, 1, 2}

// SelectNext implements spec §4.2: given state and the bank, yields the
// next question or OutOfQuestionsError signaling end-of-test.
func SelectNext(state *models.SessionState, b models.Bank, cfg models.Config, rng RNG) (*models.Question, error) {
	var q *models.Question
	var err error

	if state.QIndex < cfg.CalibrationQuestions {
		q, err = selectCalibration(state, b, rng)
	} else {
		q, err = selectAdaptive(state, b, cfg, rng)
	}
	if err != nil {
		return nil, err
	}

	q.AssignedLevel = q.Level
	state.Used[q.ID] = true
	return q, nil
}

func selectCalibration(state *models.SessionState, b models.Bank, rng RNG) (*models.Question, error) {
	level := calibrationLevels[state.CalibrationIndex]

	pool := bank.UnusedAt(b, level, state.Used)
	candidates := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if models.CalibrationSafeAt(q.Mechanic, level) {
			candidates = append(candidates, q)
		}
	}

	candidates = applyRecencyGate(candidates, state)
	filtered := applyCategoryGate(candidates, state, rng)
	if len(filtered) == 0 {
		filtered = candidates
	}
	if len(filtered) == 0 {
		// Calibration level strictly has no unused, calibration-safe
		// question left; widen to all levels, curriculum-gated only.
		filtered = widenToAllLevels(b, state)
	}
	if len(filtered) == 0 {
		return nil, &models.OutOfQuestionsError{QIndex: state.QIndex}
	}

	picked := sampleTop5(orderByProximity(filtered, level), rng)
	picked.IsCalibration = true
	state.CalibrationIndex++
	return &picked, nil
}

func selectAdaptive(state *models.SessionState, b models.Bank, cfg models.Config, rng RNG) (*models.Question, error) {
	levels, target := candidateLevels(state, cfg)

	pool := unionUnused(b, levels, state.Used)
	pool = applyCurriculumGate(pool)

	withRecency := applyRecencyGate(pool, state)
	withCategory := applyCategoryGate(withRecency, state, rng)

	// Relaxation ladder: category -> recency -> exploration radius.
	filtered := withCategory
	if len(filtered) == 0 {
		filtered = withRecency
	}
	if len(filtered) == 0 {
		filtered = pool
	}
	if len(filtered) == 0 {
		filtered = widenToAllLevels(b, state)
	}
	if len(filtered) == 0 {
		return nil, &models.OutOfQuestionsError{QIndex: state.QIndex}
	}

	picked := sampleTop5(orderByProximity(filtered, target), rng)
	return &picked, nil
}

// candidateLevels implements §4.2's phase-driven level-set construction. It
// also returns the proximity target the caller should sample toward: the
// current level during the early/mid exploration radii, but the probed
// ceiling itself during the end-test push, so a strong student's pushed
// high levels are actually reachable rather than drowned out by the lower
// end of the candidate set.
func candidateLevels(state *models.SessionState, cfg models.Config) ([]int, int) {
	set := map[int]bool{state.CurrentLevel: true}
	target := state.CurrentLevel

	switch {
	case state.QIndex < 8:
		addClamped(set, state.CurrentLevel-1)
		addClamped(set, state.CurrentLevel+1)
	case state.QIndex < 13:
		addClamped(set, state.CurrentLevel-2)
		addClamped(set, state.CurrentLevel+2)
	default:
		acc := state.OverallAccuracy()
		pushedCeiling := false
		if acc >= 0.85 {
			set[4] = true
			set[5] = true
			target = 5
			pushedCeiling = true
		}
		if acc >= 0.70 && state.CurrentLevel >= 3 {
			addClamped(set, state.CurrentLevel+1)
			if !pushedCeiling {
				target = clampLevel(state.CurrentLevel + 1)
			}
		}
	}

	out := make([]int, 0, len(set))
	for lvl := range set {
		out = append(out, lvl)
	}
	return out, target
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 5 {
		return 5
	}
	return level
}

func addClamped(set map[int]bool, level int) {
	set[clampLevel(level)] = true
}

// unionUnused gathers unused questions across the given levels in
// ascending level order, each level's own bank order preserved — the
// "stable bank order" the top-5 sampling rule depends on.
func unionUnused(b models.Bank, levels []int, used map[string]bool) []models.Question {
	sorted := append([]int(nil), levels...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	var out []models.Question
	for _, lvl := range sorted {
		out = append(out, bank.UnusedAt(b, lvl, used)...)
	}
	return out
}

func widenToAllLevels(b models.Bank, state *models.SessionState) []models.Question {
	all := unionUnused(b, []int{0, 1, 2, 3, 4, 5}, state.Used)
	return applyCurriculumGate(all)
}

// orderByProximity stable-sorts pool by distance from target, nearest
// first, within-distance order preserved from the input. Ascending-level
// concatenation alone lets the lowest candidate level fill the entire
// top-5 sampling window whenever it has 5+ survivors, making higher
// candidate levels — e.g. the end-test push's probed ceiling — structurally
// unreachable; ordering by proximity to the phase's target level instead
// keeps the level actually being probed in the sampled window.
func orderByProximity(pool []models.Question, target int) []models.Question {
	out := append([]models.Question(nil), pool...)
	sort.SliceStable(out, func(i, j int) bool {
		return levelDistance(out[i].Level, target) < levelDistance(out[j].Level, target)
	})
	return out
}

func levelDistance(level, target int) int {
	d := level - target
	if d < 0 {
		return -d
	}
	return d
}

func applyCurriculumGate(pool []models.Question) []models.Question {
	out := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if models.MechanicAllowedAt(q.Mechanic, q.Level) {
			out = append(out, q)
		}
	}
	return out
}

// applyRecencyGate drops candidates whose mechanic is in the 2-entry
// recency ring, but only when at least one candidate isn't.
func applyRecencyGate(pool []models.Question, state *models.SessionState) []models.Question {
	hasFresh := false
	for _, q := range pool {
		if !state.RecentMechanics(q.Mechanic) {
			hasFresh = true
			break
		}
	}
	if !hasFresh {
		return pool
	}
	out := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if !state.RecentMechanics(q.Mechanic) {
			out = append(out, q)
		}
	}
	return out
}

// applyCategoryGate narrows the pool to a biased-coin-chosen category,
// deterministically forcing the under-represented side once the served
// imbalance reaches 2.
func applyCategoryGate(pool []models.Question, state *models.SessionState, rng RNG) []models.Question {
	if len(pool) == 0 {
		return pool
	}
	chosen := chooseCategory(state.CategoryTally, rng)
	out := make([]models.Question, 0, len(pool))
	for _, q := range pool {
		if models.CategoryOf(q.Mechanic) == chosen {
			out = append(out, q)
		}
	}
	return out
}

func chooseCategory(tally models.CategoryTally, rng RNG) models.Category {
	diff := tally.Audio - tally.Text
	if diff >= 2 {
		return models.CategoryText
	}
	if diff <= -2 {
		return models.CategoryAudio
	}

	under := models.CategoryAudio
	switch {
	case diff > 0:
		under = models.CategoryText
	case diff < 0:
		under = models.CategoryAudio
	default:
		if rng.Float64() < 0.5 {
			under = models.CategoryText
		}
	}

	p := 0.5 + 0.1*math.Abs(float64(diff))
	if p > 0.9 {
		p = 0.9
	}
	if rng.Float64() < p {
		return under
	}
	if under == models.CategoryAudio {
		return models.CategoryText
	}
	return models.CategoryAudio
}

// sampleTop5 samples uniformly from the first 5 candidates of the given
// (already proximity-ordered) pool, per §4.2's variety-with-determinism
// rule.
func sampleTop5(pool []models.Question, rng RNG) models.Question {
	n := len(pool)
	if n > 5 {
		n = 5
	}
	idx := rng.Intn(n)
	return pool[idx]
}
