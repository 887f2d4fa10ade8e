// Package llm drafts message suggestions with Google's Gemini models.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

const (
	DefaultModel = "gemini-2.0-flash"

	systemPrompt = "You are a helpful assistant for a small business that answers leads " +
		"across email, SMS and social channels. Write concise, warm and professional " +
		"messages. Reply with the message text only."
)

// ContentGenerator is satisfied by (*genai.Client).Models.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiDrafter struct {
	models ContentGenerator
	model  string
}

func NewGeminiDrafter(ctx context.Context, apiKey, model string) (*GeminiDrafter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return NewGeminiDrafterWithGenerator(client.Models, model), nil
}

func NewGeminiDrafterWithGenerator(models ContentGenerator, model string) *GeminiDrafter {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiDrafter{models: models, model: model}
}

func (d *GeminiDrafter) Draft(ctx context.Context, req usecase.DraftRequest) (string, error) {
	result, err := d.models.GenerateContent(ctx, d.model, buildContents(req), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return strings.TrimSpace(result.Text()), nil
}

// buildContents replays the thread as alternating turns and appends the
// instruction, with what is known about the lead, as the final user turn.
func buildContents(req usecase.DraftRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}

	var prompt strings.Builder
	prompt.WriteString(req.Prompt)
	if facts := leadFacts(req.Lead); facts != "" {
		prompt.WriteString("\n\nLead details:\n")
		prompt.WriteString(facts)
	}

	return append(contents, genai.NewContentFromText(prompt.String(), genai.RoleUser))
}

func leadFacts(l usecase.DraftLead) string {
	var b strings.Builder
	for _, f := range []struct{ label, value string }{
		{"Name", l.Name},
		{"Email", l.Email},
		{"Phone", l.Phone},
		{"Source", l.Source},
		{"Notes", l.Notes},
	} {
		if strings.TrimSpace(f.value) != "" {
			fmt.Fprintf(&b, "- %s: %s\n", f.label, f.value)
		}
	}
	return b.String()
}
