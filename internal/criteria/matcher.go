// Package criteria decides whether a generated response satisfies a
// natural-language success criterion. Matching is purely textual and fully
// deterministic, so it needs no network access and no LLM call.
package criteria

import (
	"strings"

	"github.com/ticket-ai/outreach-eval/internal/testcase"
)

// handlerFunc is a bespoke predicate for a named criterion. It receives the
// normalized (trimmed, lower-cased) response plus the test case for context.
type handlerFunc func(response string, tc *testcase.TestCase) bool

// Matcher checks responses against success criteria using an ordered set of
// strategies: direct substring match, bag-of-words subset, then a registered
// table of named-criterion handlers. Unknown criteria fail closed.
type Matcher struct {
	handlers map[string]handlerFunc
}

// NewMatcher returns a Matcher with the standard named-criterion handlers
// registered.
func NewMatcher() *Matcher {
	m := &Matcher{handlers: make(map[string]handlerFunc)}

	m.Register("professional tone", anyOf(
		"best regards", "sincerely", "thank you", "regards", "please", "kindly",
	))
	m.Register("correctly identifies product", matchProductIdentification)
	m.Register("updates correct quantity", matchQuantityUpdate)
	m.Register("provides reasoning", anyOf(
		"because", "since", "as", "therefore", "this ensures", "this will",
	))
	m.Register("verifies return eligibility", anyOf(
		"within", "window", "eligible", "qualify", "can return", "days ago",
	))
	m.Register("mentions return window", anyOf("30-day", "30 day"))
	m.Register("explains return process", anyOf(
		"shipping label", "refund", "email", "process", "initiated", "return",
	))
	m.Register("offers size exchange", anyOf(
		"different size", "exchange", "another size", "size exchange", "order a different",
	))

	return m
}

// Register adds a handler for a named criterion. The name is normalized the
// same way criteria are at match time.
func (m *Matcher) Register(name string, fn handlerFunc) {
	m.handlers[normalize(name)] = fn
}

// Matches reports whether the response meets the criterion. Both inputs are
// trimmed and lower-cased first; criteria are not case-sensitive and
// whitespace differences never cause false negatives.
func (m *Matcher) Matches(response, criterion string, tc *testcase.TestCase) bool {
	response = normalize(response)
	criterion = normalize(criterion)

	// Strategy 1: the criterion text appears verbatim in the response.
	if strings.Contains(response, criterion) {
		return true
	}

	// Strategy 2: every word of the criterion appears somewhere in the
	// response, order and duplicates irrelevant.
	if wordSubset(criterion, response) {
		return true
	}

	// Strategy 3: named-criterion handlers.
	if fn, ok := m.handlers[criterion]; ok {
		return fn(response, tc)
	}

	// "references X Y" criteria: response must mention at least one of the
	// referenced terms.
	if strings.Contains(criterion, "references") {
		return matchReferences(response, criterion)
	}

	// Unknown criteria never pass by default.
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func wordSubset(criterion, response string) bool {
	responseWords := make(map[string]struct{})
	for _, w := range strings.Fields(response) {
		responseWords[w] = struct{}{}
	}
	for _, w := range strings.Fields(criterion) {
		if _, ok := responseWords[w]; !ok {
			return false
		}
	}
	return true
}

// anyOf builds a handler that passes when any of the given phrases appears in
// the response.
func anyOf(phrases ...string) handlerFunc {
	return func(response string, _ *testcase.TestCase) bool {
		for _, p := range phrases {
			if strings.Contains(response, p) {
				return true
			}
		}
		return false
	}
}

func matchReferences(response, criterion string) bool {
	words := strings.Fields(criterion)
	if len(words) < 2 {
		return false
	}
	// Skip the leading word "references"; the rest are the terms to look for.
	for _, term := range words[1:] {
		if strings.Contains(response, term) {
			return true
		}
	}
	return false
}
