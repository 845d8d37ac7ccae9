// Package httpapi exposes the placement engine over HTTP, mirroring the
// teacher's gorilla/mux handler + writeJSON idiom from
// internal/questions/handler.go. It owns the in-memory session registry —
// nothing in the teacher's own code shows this shape (the teacher has no
// equivalent request-scoped, non-persisted registry), so it's grounded
// instead on the general Go idiom of a mutex-guarded map, per DESIGN.md.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/chesnokovivan/novakid-placement-test/internal/database"
	"github.com/chesnokovivan/novakid-placement-test/internal/models"
	"github.com/chesnokovivan/novakid-placement-test/internal/scorer"
	"github.com/chesnokovivan/novakid-placement-test/internal/session"
)

// Registry holds every live session in the process. Each session owns its
// own state exclusively (spec §5); the registry only guards the map of
// session id -> *session.Session, not a session's own internals.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session

	bank     models.Bank
	config   models.Config
	analyzer scorer.Analyzer
	db       *sql.DB
}

func NewRegistry(bank models.Bank, cfg models.Config, analyzer scorer.Analyzer, db *sql.DB) *Registry {
	return &Registry{
		sessions: make(map[string]*session.Session),
		bank:     bank,
		config:   cfg,
		analyzer: analyzer,
		db:       db,
	}
}

// persist writes a completed session's report to the database, when one
// is configured. Failures are logged, never surfaced to the caller — the
// HTTP flow must still return the report (§7's propagation policy: no
// runtime anomaly may prevent a report from being emitted).
func (reg *Registry) persist(s *session.Session, report models.PlacementReport) {
	if reg.db == nil {
		return
	}
	snapshot := s.Debug()
	metadataJSON, err := json.Marshal(report.Metadata)
	if err != nil {
		metadataJSON = nil
	}
	if err := database.RecordSession(reg.db, s.ID, report, s.History(), snapshot.QIndex, report.AnalysisError, metadataJSON); err != nil {
		log.Printf("[httpapi] failed to persist session %s: %v", s.ID, err)
	}
}

// Create starts a new session and registers it.
func (reg *Registry) Create(metadata map[string]string) *session.Session {
	s := session.New(reg.bank, reg.config, reg.analyzer, metadata)
	reg.mu.Lock()
	reg.sessions[s.ID] = s
	reg.mu.Unlock()
	return s
}

// Get returns the session for an id, or an error if it's unknown.
func (reg *Registry) Get(id string) (*session.Session, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	s, ok := reg.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %s", id)
	}
	return s, nil
}

// Drop removes a session, completing its cancellation per §5: no cleanup
// beyond releasing memory.
func (reg *Registry) Drop(id string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.sessions, id)
}
