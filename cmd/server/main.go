package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/chesnokovivan/novakid-placement-test/internal/analyzer"
	"github.com/chesnokovivan/novakid-placement-test/internal/bank"
	"github.com/chesnokovivan/novakid-placement-test/internal/config"
	"github.com/chesnokovivan/novakid-placement-test/internal/database"
	"github.com/chesnokovivan/novakid-placement-test/internal/httpapi"
	"github.com/chesnokovivan/novakid-placement-test/internal/scorer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	bankPath := os.Getenv("BANK_FILE")
	if bankPath == "" {
		bankPath = "bank.json"
	}
	f, err := os.Open(bankPath)
	if err != nil {
		log.Fatalf("Failed to open bank file %s: %v", bankPath, err)
	}
	defer f.Close()

	questionBank, err := bank.Load(f)
	if err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}
	log.Printf("[server] loaded question bank (%d levels)", len(questionBank))

	var db *sql.DB
	if os.Getenv("DB_HOST") != "" {
		db, err = database.Connect()
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("[server] persistence enabled")
	} else {
		log.Println("[server] running fully in-memory, no DB_HOST configured")
	}

	var an scorer.Analyzer
	if cfg.AdvisorEnabled {
		an = analyzer.New()
	}

	registry := httpapi.NewRegistry(questionBank, cfg, an, db)
	handler := httpapi.NewHandler(registry)
	router := httpapi.NewRouter(handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("[server] starting on :%s", port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
