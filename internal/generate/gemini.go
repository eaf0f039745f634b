package generate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"todosync/internal/annotation"
)

// GeminiGenerator writes the issue body prose with Google's Gemini API. The
// title stays deterministic (shared Title) and the key marker block is
// appended locally, so the model only ever produces the prose and the
// round-trip contract cannot depend on model output.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate asks the model for a short issue description grounded in the
// annotation's source context.
func (g *GeminiGenerator) Generate(ctx context.Context, ann annotation.Annotation) (Content, error) {
	prompt := buildPrompt(ann)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return Content{}, fmt.Errorf("gemini generate failed for %s:%d: %w", ann.File, ann.Line, err)
	}
	prose := strings.TrimSpace(resp.Text())
	if prose == "" {
		return Content{}, fmt.Errorf("gemini returned empty body for %s:%d", ann.File, ann.Line)
	}
	return Content{
		Title: Title(ann),
		Body:  finish(prose, ann),
	}, nil
}

func buildPrompt(ann annotation.Annotation) string {
	var b strings.Builder
	b.WriteString("Write a short issue description (2-4 sentences, markdown) for the following ")
	b.WriteString("source code annotation. Describe what needs doing and why, based on the ")
	b.WriteString("surrounding code. Do not invent details not supported by the context.\n\n")
	fmt.Fprintf(&b, "Annotation: %s: %s\n", ann.Type, ann.Content)
	fmt.Fprintf(&b, "Location: %s line %d\n\n", ann.File, ann.Line)
	b.WriteString("Surrounding code:\n")
	for _, line := range ann.Context {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
