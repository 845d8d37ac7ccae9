// Package analyzer provides the Advisory Analyzer Interface implementations
// named in SPEC_FULL.md §4.4/§10: an Anthropic API-backed analyzer, a CLI
// analyzer shelling out to the claude CLI, and a mock for local
// development. The three-way construction switch mirrors the teacher's
// own Generator/Validator selection in internal/generator/client.go.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
	"github.com/chesnokovivan/novakid-placement-test/internal/scorer"
)

// New selects an analyzer implementation the same way the teacher's
// generator.NewGenerator picks an LLMClient: USE_CLI_GENERATOR-style env
// flags first, then mock, then the live API.
func New() scorer.Analyzer {
	if os.Getenv("USE_CLI_ANALYZER") == "true" {
		cliPath := os.Getenv("CLAUDE_CLI_PATH")
		if cliPath == "" {
			cliPath = "claude"
		}
		log.Println("Analyzer using Claude CLI (local plan)")
		return NewCLIAnalyzer(cliPath)
	}
	if os.Getenv("MOCK_ANALYZER") == "true" {
		log.Println("Analyzer using mock data")
		return NewMockAnalyzer()
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-opus-4-5-20251101"
	}
	log.Println("Analyzer using Anthropic API:", model)
	return NewAnthropicAnalyzer(model)
}

// ── AnthropicAnalyzer — production ──────────────────────────

// AnthropicAnalyzer calls the Anthropic API directly, modeled on the
// teacher's APIClient: build prompt, call with retry, strip code fences,
// unmarshal and validate.
type AnthropicAnalyzer struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicAnalyzer(model string) *AnthropicAnalyzer {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &AnthropicAnalyzer{client: &client, model: model}
}

func (a *AnthropicAnalyzer) Analyze(ctx context.Context, enriched models.EnrichedHistory) (*models.AdvisorReport, error) {
	systemPrompt := systemPrompt()
	userPrompt, err := buildUserPrompt(enriched)
	if err != nil {
		return nil, fmt.Errorf("build analyzer prompt: %w", err)
	}

	message, err := a.callWithRetry(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   2048,
		Temperature: param.NewOpt(0.2),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, &models.AdvisorUnavailableError{Reason: "anthropic call failed", Err: err}
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, &models.AdvisorUnavailableError{Reason: "empty response content"}
	}

	report, err := parseAdvisorReport(text)
	if err != nil {
		return nil, &models.AdvisorUnavailableError{Reason: "malformed response", Err: err}
	}
	return report, nil
}

func (a *AnthropicAnalyzer) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("[analyzer] retrying Anthropic call in %v (attempt %d)", sleepDuration, attempt+1)
			select {
			case <-time.After(sleepDuration):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		message, err := a.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("[analyzer] Anthropic attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic analyzer failed after retries: %w", lastErr)
}

// ── CLIAnalyzer — local dev via claude CLI ──────────────────

// CLIAnalyzer shells out to the claude CLI, mirroring the teacher's
// CLIClient: no API key required, reuses an existing Claude plan.
type CLIAnalyzer struct {
	cliPath string
}

func NewCLIAnalyzer(cliPath string) *CLIAnalyzer {
	return &CLIAnalyzer{cliPath: cliPath}
}

func (c *CLIAnalyzer) Analyze(ctx context.Context, enriched models.EnrichedHistory) (*models.AdvisorReport, error) {
	userPrompt, err := buildUserPrompt(enriched)
	if err != nil {
		return nil, fmt.Errorf("build analyzer prompt: %w", err)
	}

	text, err := runCLI(ctx, c.cliPath, systemPrompt(), userPrompt)
	if err != nil {
		return nil, &models.AdvisorUnavailableError{Reason: "claude CLI failed", Err: err}
	}

	report, err := parseAdvisorReport(text)
	if err != nil {
		return nil, &models.AdvisorUnavailableError{Reason: "malformed CLI response", Err: err}
	}
	return report, nil
}

// ── MockAnalyzer — deterministic local development ──────────

// MockAnalyzer returns a deterministic, synthetic report without calling
// out anywhere, for local development (MOCK_ANALYZER=true) and tests.
type MockAnalyzer struct {
	// FailNextN, when > 0, forces the next N calls to return
	// AdvisorUnavailable, for exercising the fallback path in tests.
	FailNextN int
	calls     int
}

func NewMockAnalyzer() *MockAnalyzer {
	return &MockAnalyzer{}
}

func (m *MockAnalyzer) Analyze(ctx context.Context, enriched models.EnrichedHistory) (*models.AdvisorReport, error) {
	m.calls++
	if m.FailNextN > 0 {
		m.FailNextN--
		return nil, &models.AdvisorUnavailableError{Reason: "mock forced failure"}
	}

	acc := 0.0
	if len(enriched.History) > 0 {
		correct := 0
		for _, r := range enriched.History {
			if r.Correct {
				correct++
			}
		}
		acc = float64(correct) / float64(len(enriched.History))
	}

	return &models.AdvisorReport{
		Placement: models.Placement{
			NovakidLevel:       enriched.FinalLevel,
			Confidence:         acc,
			CEFREquivalent:     models.CEFRLabels[enriched.FinalLevel],
			LevelJustification: "[mock] placement mirrors final session level",
		},
		SkillAnalysis: models.SkillAnalysis{
			Vocabulary:    models.SkillScore{Score: floatPtr(acc), Evidence: []string{"[mock] vocabulary evidence"}},
			Pronunciation: models.SkillScore{Score: floatPtr(acc), Evidence: []string{"[mock] pronunciation evidence"}},
			Grammar:       models.SkillScore{Score: floatPtr(acc), Evidence: []string{"[mock] grammar evidence"}},
		},
		Recommendations: models.Recommendations{
			ImmediateFocus:         []string{"[mock] review recent mistakes"},
			StrengthsToBuildOn:     []string{"[mock] consistent effort"},
			SuggestedStartingPoint: fmt.Sprintf("Begin at Novakid Level %d", enriched.FinalLevel),
			EstimatedProgress:      "[mock] steady progress expected",
		},
	}, nil
}

func floatPtr(v float64) *float64 {
	return &v
}
