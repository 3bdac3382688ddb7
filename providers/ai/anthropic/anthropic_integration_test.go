//go:build integration

package anthropic

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/leofalp/agentswarm/core/recovery"
	"github.com/leofalp/agentswarm/providers/ai"
)

// integrationModel reads ANTHROPIC_TEST_MODEL, falling back to DefaultModel.
func integrationModel() string {
	if model := os.Getenv("ANTHROPIC_TEST_MODEL"); model != "" {
		return model
	}
	return DefaultModel
}

// requireAPIKey fails the test immediately when no key is set. Integration
// tests are opt-in (build tag), so a missing key is a configuration error.
func requireAPIKey(t *testing.T) {
	t.Helper()
	if os.Getenv("CLAUDE_API_KEY") == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
		t.Fatal("CLAUDE_API_KEY or ANTHROPIC_API_KEY is required for integration tests")
	}
}

func TestAnthropicSendMessage_Integration(t *testing.T) {
	requireAPIKey(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	response, err := New().SendMessage(ctx, ai.ChatRequest{
		Model:        integrationModel(),
		SystemPrompt: "Answer with a JSON array only.",
		Messages: []ai.Message{
			ai.UserMessage(`Return [{"a":"x"},{"a":"y"}] and nothing else.`),
		},
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if response.Content == "" {
		t.Fatal("expected non-empty content in response")
	}
	if response.Usage == nil || response.Usage.TotalTokens <= 0 {
		t.Error("expected positive total tokens")
	}

	schema := recovery.Schema{Fields: []recovery.Field{{Name: "a", Type: recovery.FieldString, Required: true}}}
	outcome := recovery.Recover(response.Content, schema)
	if !outcome.OK() {
		t.Fatalf("reply did not recover: %v (content %q)", outcome.Err(), response.Content)
	}
	t.Logf("stage %s, %d records", outcome.Stage, len(outcome.Records))
}
