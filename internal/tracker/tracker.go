// Package tracker talks to the external issue tracker. The core only sees
// the Gateway interface and the Issue type; the GitHub REST client is one
// implementation of it.
package tracker

import (
	"context"
	"strings"
)

// KeyMarker is the sentinel line that precedes the embedded key in an issue
// body. Its exact text is a bit-exact contract with the body generator:
// ParseKey only recognizes keys written under this marker.
const KeyMarker = "=== DO NOT REMOVE ==="

// keyLinePrefix introduces the key itself on the line after the marker.
const keyLinePrefix = "Key: "

// Issue is a persistent record in the external tracker.
type Issue struct {
	ID    int64  // tracker-assigned identifier (issue number on GitHub)
	Title string
	Body  string
	Key   string // parsed out of Body; empty when no marker was found
}

// Gateway is the set of tracker operations the reconciliation core needs.
// Each call is a best-effort remote side effect; no transactional guarantee
// holds across calls.
type Gateway interface {
	// FetchAll returns every open issue, with Key populated from the body.
	FetchAll(ctx context.Context) ([]Issue, error)
	Create(ctx context.Context, title, body string) (*Issue, error)
	Update(ctx context.Context, id int64, title, body string) error
	Close(ctx context.Context, id int64) error
}

// ParseKey extracts the embedded key from an issue body: the text after
// "Key: " on the line directly following the KeyMarker line. Bodies without
// that pattern yield the empty string; such issues are never matched and
// never closed by reconciliation.
//
// The last marker occurrence wins. Generators append the real block at the
// very end of the body, so annotation text or context windows that happen
// to quote the marker cannot shadow the genuine key.
func ParseKey(body string) string {
	lines := strings.Split(body, "\n")
	k := ""
	for i, line := range lines {
		if strings.TrimRight(line, "\r") != KeyMarker {
			continue
		}
		if i+1 >= len(lines) {
			continue
		}
		next := strings.TrimRight(lines[i+1], "\r")
		if strings.HasPrefix(next, keyLinePrefix) {
			k = strings.TrimPrefix(next, keyLinePrefix)
		}
	}
	return k
}

// KeyBlock renders the marker block that ParseKey recognizes. Body
// generators append it verbatim so the key round-trips through the tracker.
func KeyBlock(key string) string {
	return KeyMarker + "\n" + keyLinePrefix + key + "\n"
}
