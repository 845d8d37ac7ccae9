package bank

import (
	"strings"
	"testing"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

func minimalBankJSON() string {
	return `{
		"0": [{"id":"L0_WP_1","mechanic":"word-pronunciation-practice","target_word":"cat","skill":"Pronunciation","difficulty":0.1}],
		"1": [{"id":"L1_WP_1","mechanic":"word-pronunciation-practice","target_word":"dog","skill":"Pronunciation","difficulty":0.1}],
		"2": [{"id":"L2_MC_1","mechanic":"multiple-choice-text-text","sentence":"I ___ happy.","options":["am","is"],"correct_answer":0,"skill":"Grammar","difficulty":0.2}],
		"3": [{"id":"L3_MC_1","mechanic":"multiple-choice-text-text","sentence":"She ___ tired.","options":["is","am"],"correct_answer":0,"skill":"Grammar","difficulty":0.3}],
		"4": [{"id":"L4_MC_1","mechanic":"multiple-choice-text-text","sentence":"They ___ here.","options":["are","is"],"correct_answer":0,"skill":"Grammar","difficulty":0.4}],
		"5": [{"id":"L5_MC_1","mechanic":"multiple-choice-text-text","sentence":"We ___ ready.","options":["are","is"],"correct_answer":0,"skill":"Grammar","difficulty":0.5}]
	}`
}

func TestLoad_Valid(t *testing.T) {
	b, err := Load(strings.NewReader(minimalBankJSON()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for level := 0; level <= 5; level++ {
		if len(b[level]) == 0 {
			t.Errorf("level %d: expected at least one question", level)
		}
		for _, q := range b[level] {
			if q.Level != level {
				t.Errorf("level %d: question %s stamped with level %d", level, q.ID, q.Level)
			}
		}
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	_, err := Load(strings.NewReader("not json"))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*models.BankMalformedError); !ok {
		t.Errorf("expected BankMalformedError, got %T", err)
	}
}

func TestLoad_LevelGap(t *testing.T) {
	// Levels 0-4 only; level 5 is missing.
	partial := `{
		"0": [{"id":"a","mechanic":"word-pronunciation-practice","target_word":"cat","skill":"Pronunciation","difficulty":0.1}],
		"1": [{"id":"b","mechanic":"word-pronunciation-practice","target_word":"dog","skill":"Pronunciation","difficulty":0.1}],
		"2": [{"id":"c","mechanic":"word-pronunciation-practice","target_word":"pig","skill":"Pronunciation","difficulty":0.1}],
		"3": [{"id":"d","mechanic":"word-pronunciation-practice","target_word":"cow","skill":"Pronunciation","difficulty":0.1}],
		"4": [{"id":"e","mechanic":"word-pronunciation-practice","target_word":"hen","skill":"Pronunciation","difficulty":0.1}]
	}`

	_, err := Load(strings.NewReader(partial))
	if err == nil {
		t.Fatal("expected level gap error")
	}
	gapErr, ok := err.(*models.BankLevelGapError)
	if !ok {
		t.Fatalf("expected BankLevelGapError, got %T", err)
	}
	if gapErr.Level != 5 {
		t.Errorf("expected gap at level 5, got %d", gapErr.Level)
	}
}

func TestLoad_MissingID(t *testing.T) {
	bad := `{"0": [{"mechanic":"word-pronunciation-practice","target_word":"cat","skill":"Pronunciation","difficulty":0.1}]}`
	_, err := Load(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestLoad_MechanicNotAllowedAtLevel(t *testing.T) {
	// multiple-choice-text-text is not permitted at level 0.
	bad := `{"0": [{"id":"x","mechanic":"multiple-choice-text-text","sentence":"a","options":["a","b"],"correct_answer":0,"skill":"Grammar","difficulty":0.1}]}`
	_, err := Load(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for disallowed mechanic at level")
	}
}

func TestLoad_CorrectAnswerOutOfRange(t *testing.T) {
	bad := `{"2": [{"id":"x","mechanic":"multiple-choice-text-text","sentence":"a","options":["a","b"],"correct_answer":5,"skill":"Grammar","difficulty":0.1}]}`
	_, err := Load(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for out-of-range correct_answer")
	}
}

func TestLoad_SentenceScrambleLengthMismatch(t *testing.T) {
	bad := `{"2": [{"id":"x","mechanic":"sentence-scramble","sentence_template":"a ___","word_options":["a","b","c"],"correct_order":[0,1],"skill":"Grammar","difficulty":0.1}]}`
	_, err := Load(strings.NewReader(bad))
	if err == nil {
		t.Fatal("expected error for correct_order length mismatch")
	}
}

func TestUnusedAt(t *testing.T) {
	b, err := Load(strings.NewReader(minimalBankJSON()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	used := map[string]bool{"L2_MC_1": true}
	out := UnusedAt(b, 2, used)
	if len(out) != 0 {
		t.Errorf("expected no unused questions at level 2, got %d", len(out))
	}

	out = UnusedAt(b, 2, map[string]bool{})
	if len(out) != 1 {
		t.Errorf("expected 1 unused question at level 2, got %d", len(out))
	}
}
