// Package mentions turns comment text into mention-aware markup and drives
// the @-completion picker used while a comment is being written.
package mentions

import (
	"strings"
	"unicode"
)

// MaxQueryLength is the query length at which an open trigger is abandoned.
const MaxQueryLength = 50

// TriggerState is an open mention-completion context. Offset is the rune
// offset of the triggering '@'; Query is the lowercased text typed after it.
type TriggerState struct {
	Offset int    `json:"offset" example:"6"`
	Query  string `json:"query" example:"al"`
}

// DetectTrigger reports whether the caret sits inside a mention being typed.
// Offsets are counted in runes. Text after the caret is never inspected.
func DetectTrigger(text string, caret int, hasCandidates bool) (TriggerState, bool) {
	if !hasCandidates {
		return TriggerState{}, false
	}

	runes := []rune(text)
	before := runes[:clamp(caret, 0, len(runes))]

	at := lastIndex(before, '@')
	if at < 0 {
		return TriggerState{}, false
	}

	tail := before[at+1:]
	for _, r := range tail {
		if unicode.IsSpace(r) || r == ']' {
			return TriggerState{}, false
		}
	}

	// Caret is inside the image reference of an unterminated @[...] token.
	prefix := string(before[:at])
	if open := strings.LastIndex(prefix, "@["); open >= 0 && !strings.Contains(prefix[open:], "]") {
		return TriggerState{}, false
	}

	if len(tail) >= MaxQueryLength {
		return TriggerState{}, false
	}

	return TriggerState{Offset: at, Query: strings.ToLower(string(tail))}, true
}

func lastIndex(runes []rune, target rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
