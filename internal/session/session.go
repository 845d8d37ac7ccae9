// Package session wraps the Selection Policy, Adjustment Policy, and
// Scorer into the single per-student object the HTTP layer drives one
// step at a time, per the cooperative scheduling model in spec §5.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chesnokovivan/novakid-placement-test/internal/answercheck"
	"github.com/chesnokovivan/novakid-placement-test/internal/engine"
	"github.com/chesnokovivan/novakid-placement-test/internal/models"
	"github.com/chesnokovivan/novakid-placement-test/internal/scorer"
)

// Session owns one student's full placement run: its own state, the
// shared immutable bank, and the policies to advance it. Every step runs
// to completion before the next begins — no session creates background
// work of its own.
type Session struct {
	ID       string
	Bank     models.Bank
	Config   models.Config
	Analyzer scorer.Analyzer
	Rng      engine.RNG

	mu    sync.Mutex
	state *models.SessionState

	// pending holds the question currently awaiting an answer, so Answer
	// can validate the caller is answering the question it was given.
	pending *models.Question
}

// New creates a session seeded from time, ready to serve its first
// question. Tests replace Rng after New to pin a seed.
func New(bank models.Bank, cfg models.Config, analyzer scorer.Analyzer, metadata map[string]string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Bank:     bank,
		Config:   cfg,
		Analyzer: analyzer,
		Rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		state:    models.NewSessionState(metadata),
	}
}

// Next runs the Selection Policy and returns the question to serve, or
// nil when the test is complete.
func (s *Session) Next() (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.QIndex >= s.Config.QuestionsPerTest {
		return nil, nil
	}

	q, err := engine.SelectNext(s.state, s.Bank, s.Config, s.Rng)
	if err != nil {
		if _, ok := err.(*models.OutOfQuestionsError); ok {
			s.state.Warning = "Test ended early: question bank exhausted before reaching 15 questions."
			return nil, nil
		}
		return nil, err
	}

	s.pending = q
	return q, nil
}

// Answer checks the given answer against the pending question, runs the
// Adjustment Policy, and returns the check result.
func (s *Session) Answer(questionID string, answer any, responseTime float64) (answercheck.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil || s.pending.ID != questionID {
		return answercheck.Result{}, fmt.Errorf("no pending question with id %s", questionID)
	}
	q := *s.pending
	s.pending = nil

	result, checkErr := answercheck.Check(q, answer, responseTime)
	// A shape mismatch is recorded as incorrect per §7 rather than
	// aborting the step.

	record := models.AnsweredRecord{
		QuestionID:    q.ID,
		Mechanic:      q.Mechanic,
		AssignedLevel: q.AssignedLevel,
		Skill:         q.Skill,
		Correct:       result.Correct,
		ResponseTime:  result.ResponseTime,
	}
	engine.Update(s.state, record, s.Config)

	return result, checkErr
}

// Report runs the Scorer, optionally through the Advisory Analyzer.
func (s *Session) Report(ctx context.Context) models.PlacementReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scorer.Score(ctx, s.state, s.Config, s.Analyzer)
}

// Debug returns the introspection snapshot from §11's supplemented
// debug/introspection feature.
func (s *Session) Debug() models.DebugSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot(s.Config)
}

// History returns a copy of the answered history, for callers (e.g. the
// optional persistence layer) that need it after scoring completes.
func (s *Session) History() []models.AnsweredRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AnsweredRecord, len(s.state.History))
	copy(out, s.state.History)
	return out
}

// Done reports whether the session has served all configured questions
// or ended early on OutOfQuestions.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.QIndex >= s.Config.QuestionsPerTest || (s.pending == nil && s.state.Warning != "")
}
