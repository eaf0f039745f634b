// Package annotation extracts inline source annotations (TODO, FIXME, ...)
// from file content.
package annotation

import (
	"regexp"
	"strings"

	"todosync/internal/key"
)

// ContextRadius is the number of lines captured on each side of an
// annotation for its context window.
const ContextRadius = 5

// Annotation is one occurrence of a recognized prefix at a specific
// file/line. Annotations are ephemeral: they are recomputed from current
// file content on every run, never persisted.
type Annotation struct {
	Type    string   // matched prefix, e.g. "TODO"
	Content string   // text following "PREFIX:" on the line
	File    string   // file identifier as passed to Extract
	Line    int      // 1-based line number
	Context []string // surrounding lines, clipped to file bounds
	Key     string   // identity string, key.Encode(File, Line)
}

// Extractor matches a fixed prefix set against file content. The compiled
// pattern carries no scan state between calls, so a single Extractor is safe
// to share across files and goroutines.
type Extractor struct {
	pattern *regexp.Regexp
}

// NewExtractor builds an Extractor for the given comment prefixes.
// A prefix matches only when immediately followed by a colon.
func NewExtractor(prefixes []string) *Extractor {
	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return &Extractor{
		pattern: regexp.MustCompile("(" + strings.Join(quoted, "|") + "):"),
	}
}

// Extract scans every line of a file and returns each prefix occurrence in
// first-occurrence order: top to bottom, left to right within a line. A line
// may yield several annotations; the content of each runs from its colon up
// to the next prefix match on the same line, or end of line.
//
// Extract is a pure function of its inputs: no state carries between files.
func (e *Extractor) Extract(file string, lines []string) []Annotation {
	var out []Annotation
	for i, line := range lines {
		matches := e.pattern.FindAllStringSubmatchIndex(line, -1)
		for m, match := range matches {
			end := len(line)
			if m+1 < len(matches) {
				end = matches[m+1][0]
			}
			out = append(out, Annotation{
				Type:    line[match[2]:match[3]],
				Content: strings.TrimSpace(line[match[1]:end]),
				File:    file,
				Line:    i + 1,
				Context: contextWindow(lines, i),
				Key:     key.Encode(file, i+1),
			})
		}
	}
	return out
}

// contextWindow returns lines[i-ContextRadius .. i+ContextRadius] clipped to
// file bounds, as a fresh slice.
func contextWindow(lines []string, i int) []string {
	lo := i - ContextRadius
	if lo < 0 {
		lo = 0
	}
	hi := i + ContextRadius + 1
	if hi > len(lines) {
		hi = len(lines)
	}
	return append([]string(nil), lines[lo:hi]...)
}
