// Package generate turns annotations into human-readable issue content.
//
// Every generator embeds the annotation's key verbatim in the body via the
// tracker key marker block, so the key survives the round trip through the
// remote tracker. Generators are swappable; the reconciliation core does not
// depend on which one produced the text.
package generate

import (
	"context"
	"fmt"
	"strings"

	"todosync/internal/annotation"
	"todosync/internal/tracker"
)

// Content is the title/body pair pushed to the tracker.
type Content struct {
	Title string
	Body  string
}

// Generator maps one annotation to issue content.
type Generator interface {
	Generate(ctx context.Context, ann annotation.Annotation) (Content, error)
}

const titleMaxLen = 72

// Title builds the deterministic issue title for an annotation. Shared by
// all generators so the title does not churn when switching generators.
func Title(ann annotation.Annotation) string {
	content := strings.TrimSpace(ann.Content)
	if content == "" {
		content = fmt.Sprintf("annotation at %s:%d", ann.File, ann.Line)
	}
	if len(content) > titleMaxLen {
		content = content[:titleMaxLen-3] + "..."
	}
	return fmt.Sprintf("%s: %s", ann.Type, content)
}

// finish appends the key marker block to generated prose. ParseKey on the
// result always recovers ann.Key.
func finish(prose string, ann annotation.Annotation) string {
	return strings.TrimRight(prose, "\n") + "\n\n" + tracker.KeyBlock(ann.Key)
}
