// Package notes extracts the difficulty descriptor that follows a marker
// prefix in a task's notes.
package notes

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultDescriptor is used when nothing word-like follows the prefix.
const DefaultDescriptor = "Easy"

var descriptorRegex = regexp.MustCompile(`^([\p{L}\p{N}_]+)([\s\S]*)$`)

// Result is the outcome of a successful Parse.
type Result struct {
	Descriptor string
	Residual   string
}

// Parse reports whether notes start with prefix, ignoring case, and splits
// what follows into a descriptor word and the residual notes.
//
// The prefix is compared against the first len(prefix) runes of notes and
// exactly those runes are stripped.
func Parse(notes, prefix string) (Result, bool) {
	n := utf8.RuneCountInString(prefix)
	head, rest, ok := splitRunes(notes, n)
	if !ok || !strings.EqualFold(head, prefix) {
		return Result{}, false
	}

	remaining := strings.TrimLeftFunc(rest, unicode.IsSpace)
	matches := descriptorRegex.FindStringSubmatch(remaining)
	if matches == nil {
		return Result{Descriptor: DefaultDescriptor, Residual: remaining}, true
	}
	return Result{
		Descriptor: matches[1],
		Residual:   strings.TrimLeftFunc(matches[2], unicode.IsSpace),
	}, true
}

// splitRunes cuts s after its first n runes.
func splitRunes(s string, n int) (head, rest string, ok bool) {
	i := 0
	for ; n > 0; n-- {
		if i >= len(s) {
			return "", "", false
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:], true
}
