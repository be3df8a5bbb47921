package gitops

import (
	"context"
	"fmt"
	"strings"

	"github.com/steveyegge/docdrift/internal/ai"
)

// MessageGenerator produces commit messages from a staged diff using the
// Anthropic API directly.
type MessageGenerator struct {
	client *ai.Client
}

// NewMessageGenerator creates a MessageGenerator backed by client.
func NewMessageGenerator(client *ai.Client) *MessageGenerator {
	return &MessageGenerator{client: client}
}

// commitMessageResponse is the JSON shape requested from the model.
type commitMessageResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generate returns a conventional-commits message describing the diff.
func (m *MessageGenerator) Generate(ctx context.Context, diff string) (string, error) {
	response, err := m.client.Complete(ctx, buildMessagePrompt(diff))
	if err != nil {
		return "", fmt.Errorf("failed to generate commit message: %w", err)
	}

	parsed := ai.Parse[commitMessageResponse](response)
	if !parsed.Success || parsed.Data.Subject == "" {
		return "", fmt.Errorf("failed to parse commit message response: %s", parsed.Error)
	}

	if parsed.Data.Body == "" {
		return parsed.Data.Subject, nil
	}
	return parsed.Data.Subject + "\n\n" + parsed.Data.Body, nil
}

func buildMessagePrompt(diff string) string {
	// Keep the prompt bounded; huge diffs add nothing to a commit subject.
	if len(diff) > 10000 {
		diff = diff[:10000] + "\n... (truncated)"
	}

	var sb strings.Builder
	sb.WriteString("Generate a commit message for a documentation update, conventional commits format.\n\n")
	sb.WriteString("## Diff\n\n```diff\n")
	sb.WriteString(diff)
	sb.WriteString("\n```\n\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Subject: one line, 50 chars max, `docs: description` form, imperative mood\n")
	sb.WriteString("- Body: short explanation of what changed in the documentation, wrapped at 72 chars\n\n")
	sb.WriteString("Respond with JSON:\n")
	sb.WriteString("```json\n{\n  \"subject\": \"docs: concise description\",\n  \"body\": \"What changed and why.\"\n}\n```\n")
	return sb.String()
}
