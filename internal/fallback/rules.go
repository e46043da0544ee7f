// Package fallback holds the deterministic stand-ins used when the remote ML
// API cannot answer: risk classification, learning-path templates, the quiz
// question bank, the daily insight and canned tutor replies.
//
// Every function here is total over its inputs and reads only package-level
// tables, so callers may use them from any goroutine.
package fallback

import "strings"

// rule pairs a match predicate with the value it selects. Rules are evaluated
// in order and the first match wins.
type rule[T any] struct {
	match func(text string) bool
	pick  func(text string) T
}

func firstMatch[T any](rules []rule[T], text string, otherwise func(string) T) T {
	for _, r := range rules {
		if r.match(text) {
			return r.pick(text)
		}
	}
	return otherwise(text)
}

// containsAny matches case-insensitively when text contains any keyword.
// Keywords must already be lower case.
func containsAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		lower := strings.ToLower(text)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	}
}

func constant[T any](v T) func(string) T {
	return func(string) T { return v }
}
