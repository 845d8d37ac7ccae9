// cmd/bankgen assembles a question bank file offline, the Go equivalent of
// generate_questions.py: for every level and every mechanic permitted at
// that level, ask an LLM client for a batch of questions, validate them,
// and write the level-keyed JSON blob bank.Load expects. It is a standalone
// tool, never imported by cmd/server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/chesnokovivan/novakid-placement-test/internal/bankgen"
	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

func main() {
	outPath := flag.String("out", "bank.json", "path to write the generated bank JSON to")
	flag.Parse()

	client := bankgen.NewClient()

	bankData, err := bankgen.GenerateBank(context.Background(), client)
	if err != nil {
		log.Fatalf("[bankgen] generation failed: %v", err)
	}

	keyed := make(map[string][]models.Question, len(bankData))
	total := 0
	for level, questions := range bankData {
		keyed[strconv.Itoa(level)] = questions
		total += len(questions)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatalf("[bankgen] could not create %s: %v", *outPath, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(keyed); err != nil {
		log.Fatalf("[bankgen] could not write %s: %v", *outPath, err)
	}

	log.Printf("[bankgen] wrote %d questions across %d levels to %s", total, len(keyed), *outPath)
}
