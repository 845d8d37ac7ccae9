// Package bankgen is the offline, one-shot producer of the question bank
// named as an external collaborator in spec §1. It is never linked into
// the session engine's runtime — only cmd/bankgen depends on it. The
// three-way LLM client switch mirrors the teacher's own
// internal/generator/client.go NewGenerator construction.
package bankgen

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/chesnokovivan/novakid-placement-test/internal/models"
)

// LLMClient is the interface every generation backend satisfies.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewClient picks a backend the same way the teacher's generator package
// does: USE_CLI_GENERATOR, then MOCK_GENERATOR, then the live API.
func NewClient() LLMClient {
	if os.Getenv("USE_CLI_GENERATOR") == "true" {
		cliPath := os.Getenv("CLAUDE_CLI_PATH")
		if cliPath == "" {
			cliPath = "claude"
		}
		log.Println("[bankgen] using Claude CLI (local plan)")
		return &cliClient{cliPath: cliPath}
	}
	if os.Getenv("MOCK_GENERATOR") == "true" {
		log.Println("[bankgen] using mock data")
		return &mockClient{}
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = "claude-opus-4-5-20251101"
	}
	log.Println("[bankgen] using Anthropic API:", model)
	return &apiClient{model: model, client: anthropic.NewClient(option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")))}
}

// ── apiClient — Anthropic SDK ────────────────────────────────

type apiClient struct {
	client anthropic.Client
	model  string
}

func (c *apiClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.8),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			d := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("[bankgen] retrying Anthropic call in %v (attempt %d)", d, attempt+1)
			time.Sleep(d)
		}
		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			for _, block := range message.Content {
				if block.Type == "text" {
					return block.Text, nil
				}
			}
			return "", fmt.Errorf("no text content in API response")
		}
		lastErr = err
		log.Printf("[bankgen] Anthropic attempt %d failed: %v", attempt+1, err)
	}
	return "", fmt.Errorf("anthropic bankgen client failed after retries: %w", lastErr)
}

// ── cliClient — local dev via claude CLI ────────────────────

type cliClient struct {
	cliPath string
}

func (c *cliClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cmd := exec.CommandContext(ctx, c.cliPath, "--print", "--output-format", "text", "--system-prompt", systemPrompt, "--max-turns", "1")
	cmd.Stdin = strings.NewReader(userPrompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("claude CLI error: %w\nstderr: %s", err, stderr.String())
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", fmt.Errorf("claude CLI returned empty response")
	}
	return text, nil
}

// ── mockClient — local development without any LLM call ────

// mockClient returns deterministic synthetic JSON instead of calling out,
// the same shape as the teacher's MockClient.buildMockJSON: fixed content
// good enough to exercise the parser and downstream validation without a
// network call. It reads the mechanic back out of the prompt text rather
// than requiring a second parameter, so it satisfies the same LLMClient
// interface as the real backends.
type mockClient struct{}

func (m *mockClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	mechanic := mechanicFromPrompt(userPrompt)
	if mechanic == "" {
		return "", fmt.Errorf("mock client: could not determine mechanic from prompt")
	}
	return buildMockBatch(mechanic), nil
}

func mechanicFromPrompt(userPrompt string) string {
	const marker = "MECHANIC: "
	idx := strings.Index(userPrompt, marker)
	if idx < 0 {
		return ""
	}
	rest := userPrompt[idx+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return strings.TrimSpace(rest)
}

// buildMockBatch returns a two-item JSON array reusing the example object
// from mechanicFormatBlocks for each mechanic, with the number after "L" in
// the id varied (via the level placeholder) so bankgen's duplicate-id check
// passes.
func buildMockBatch(mechanic string) string {
	block, ok := mechanicFormatBlocks[models.Mechanic(mechanic)]
	if !ok {
		return "[]"
	}
	first := fmt.Sprintf(block, 1)
	second := fmt.Sprintf(block, 2)
	return "[" + first + "," + second + "]"
}
