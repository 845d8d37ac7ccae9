// Package database provides optional Postgres persistence for completed
// placement sessions and bank question serving statistics. The engine
// itself runs fully in-memory (spec §5); when DB_HOST etc. are configured,
// session completions are durably recorded the way the teacher persists
// user_question_history and questions.times_served/times_correct.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "placement_user")
	password := getEnv("DB_PASSWORD", "placement_password")
	dbname := getEnv("DB_NAME", "placement_test")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrate applies every versioned migration under migrations/ with
// golang-migrate, replacing the teacher's inline db.Exec schema blob with
// the versioned-file workflow the teacher's own go.mod already declares a
// dependency on but never wires up.
func Migrate(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "placement_test", driver)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// RecordSession persists a completed session's final report and its full
// answer history, mirroring the teacher's per-question history rows.
func RecordSession(db *sql.DB, sessionID string, report models.PlacementReport, history []models.AnsweredRecord, qIndex int, warning string, metadataJSON []byte) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO placement_sessions (id, final_level, confidence, cefr_equivalent, analysis_method, q_index, warning, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET final_level = $2, confidence = $3, cefr_equivalent = $4,
		   analysis_method = $5, q_index = $6, warning = $7, metadata = $8`,
		sessionID, report.Placement.NovakidLevel, report.Placement.Confidence,
		report.Placement.CEFREquivalent, string(report.AnalysisMethod), qIndex, warning, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, r := range history {
		_, err = tx.Exec(
			`INSERT INTO session_answers (session_id, question_id, mechanic, assigned_level, skill, correct, response_time)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sessionID, r.QuestionID, string(r.Mechanic), r.AssignedLevel, string(r.Skill), r.Correct, r.ResponseTime,
		)
		if err != nil {
			return fmt.Errorf("insert answer %s: %w", r.QuestionID, err)
		}

		correctInc := 0
		if r.Correct {
			correctInc = 1
		}
		_, err = tx.Exec(
			`INSERT INTO bank_question_stats (question_id, mechanic, level, times_served, times_correct, updated_at)
			 VALUES ($1, $2, $3, 1, $4, NOW())
			 ON CONFLICT (question_id) DO UPDATE SET
			   times_served = bank_question_stats.times_served + 1,
			   times_correct = bank_question_stats.times_correct + $4,
			   updated_at = NOW()`,
			r.QuestionID, string(r.Mechanic), r.AssignedLevel, correctInc,
		)
		if err != nil {
			return fmt.Errorf("upsert bank stats for %s: %w", r.QuestionID, err)
		}
	}

	return tx.Commit()
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
