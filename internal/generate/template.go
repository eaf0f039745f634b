package generate

import (
	"context"
	"fmt"
	"strings"

	"todosync/internal/annotation"
)

// TemplateGenerator renders issue content from a static template. It needs
// no network and is the default generator.
type TemplateGenerator struct{}

// NewTemplateGenerator creates a TemplateGenerator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// Generate renders a body with the annotation's location, its text, and the
// surrounding source context in a fenced block.
func (*TemplateGenerator) Generate(_ context.Context, ann annotation.Annotation) (Content, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** at `%s:%d`\n\n", ann.Type, ann.File, ann.Line)
	if ann.Content != "" {
		fmt.Fprintf(&b, "%s\n\n", ann.Content)
	}
	if len(ann.Context) > 0 {
		b.WriteString("Context:\n\n```\n")
		for _, line := range ann.Context {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}
	return Content{
		Title: Title(ann),
		Body:  finish(b.String(), ann),
	}, nil
}
