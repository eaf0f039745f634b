// Package key derives the stable identity string that ties an annotation
// to its tracker issue across runs.
//
// Keys are positional: a key is a pure function of (file, line). The encoding
// is reversible but treated as opaque everywhere else. Inserting or deleting
// lines above an annotation shifts its line number and therefore its key, so
// the reconciler sees a moved annotation as removed-then-added (close + create)
// instead of an update. That fragility is a known property of positional
// identity, kept deliberately over content-hash keys.
package key

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Encode maps a file path and 1-based line number to an opaque key.
// Identical inputs always produce the identical key.
func Encode(file string, line int) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%d", file, line)))
}

// Decode recovers the (file, line) pair from a key produced by Encode.
func Decode(k string) (string, int, error) {
	raw, err := base64.StdEncoding.DecodeString(k)
	if err != nil {
		return "", 0, fmt.Errorf("malformed key: %w", err)
	}
	s := string(raw)
	sep := strings.LastIndex(s, ":")
	if sep < 0 {
		return "", 0, fmt.Errorf("malformed key: no line separator in %q", s)
	}
	line, err := strconv.Atoi(s[sep+1:])
	if err != nil {
		return "", 0, fmt.Errorf("malformed key: bad line number in %q: %w", s, err)
	}
	return s[:sep], line, nil
}
