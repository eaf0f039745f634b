package generate

import (
	"context"
	"strings"
	"testing"

	"todosync/internal/annotation"
	"todosync/internal/key"
	"todosync/internal/tracker"
)

func sampleAnnotation() annotation.Annotation {
	return annotation.Annotation{
		Type:    "TODO",
		Content: "handle the error path",
		File:    "pkg/server.go",
		Line:    42,
		Context: []string{"func serve() {", "\t// TODO: handle the error path", "}"},
		Key:     key.Encode("pkg/server.go", 42),
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	ann := sampleAnnotation()
	content, err := NewTemplateGenerator().Generate(context.Background(), ann)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := tracker.ParseKey(content.Body); got != ann.Key {
		t.Errorf("ParseKey(body) = %q, want %q", got, ann.Key)
	}
}

func TestTemplateBody(t *testing.T) {
	ann := sampleAnnotation()
	content, err := NewTemplateGenerator().Generate(context.Background(), ann)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(content.Body, "pkg/server.go:42") {
		t.Error("body missing location")
	}
	if !strings.Contains(content.Body, "handle the error path") {
		t.Error("body missing annotation content")
	}
	if !strings.Contains(content.Body, "func serve() {") {
		t.Error("body missing context window")
	}
	if !strings.Contains(content.Body, tracker.KeyMarker) {
		t.Error("body missing key marker")
	}
}

func TestTitle(t *testing.T) {
	ann := sampleAnnotation()
	if got := Title(ann); got != "TODO: handle the error path" {
		t.Errorf("Title = %q", got)
	}

	ann.Content = strings.Repeat("x", 200)
	got := Title(ann)
	if len(got) > len("TODO: ")+titleMaxLen {
		t.Errorf("long title not truncated: %d chars", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title missing ellipsis: %q", got)
	}

	ann.Content = ""
	got = Title(ann)
	if !strings.Contains(got, "pkg/server.go:42") {
		t.Errorf("empty-content title has no location fallback: %q", got)
	}
}

func TestRoundTripSurvivesHostileContent(t *testing.T) {
	// Context windows that quote the marker must not break key recovery:
	// the real block is appended last and the last marker occurrence wins.
	ann := sampleAnnotation()
	ann.Content = "documents the marker"
	ann.Context = []string{"=== DO NOT REMOVE ===", "Key: forged"}
	content, err := NewTemplateGenerator().Generate(context.Background(), ann)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got := tracker.ParseKey(content.Body); got != ann.Key {
		t.Errorf("ParseKey = %q, want the genuine key %q", got, ann.Key)
	}
}
