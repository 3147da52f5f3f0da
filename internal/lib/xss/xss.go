// Package xss neutralizes script-injection payloads in request input.
//
// Every string is passed through a bluemonday strict policy: all markup is
// removed (script and style contents included). Plain text comes back as
// it went in, so quotes, ampersands and a lone "<" survive. Maps and slices
// are walked recursively; map keys are sanitized as well as values.
// Non-string scalars are returned unchanged.
package xss

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// maxPasses bounds how many entity-encoding layers are peeled off a string.
const maxPasses = 4

// Sanitizer cleans strings and decoded JSON values.
//
// A Sanitizer is safe for concurrent use once constructed.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New returns a Sanitizer backed by the bluemonday strict policy.
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// String sanitizes a single string.
//
// The policy entity-encodes the text it keeps, so its output is unescaped
// again. Unescaping can reveal markup that was entity-encoded in the input,
// hence the result is only returned once another pass leaves it unchanged.
// Input that does not settle within maxPasses is returned escaped.
func (s *Sanitizer) String(in string) string {
	if in == "" {
		return in
	}

	current := in
	for range maxPasses {
		escaped := s.policy.Sanitize(current)
		next := html.UnescapeString(escaped)
		if next == current {
			return next
		}
		current = next
	}

	return s.policy.Sanitize(current)
}

// Strings sanitizes every element of in, in place, and returns it.
func (s *Sanitizer) Strings(in []string) []string {
	for i, v := range in {
		in[i] = s.String(v)
	}
	return in
}

// Value sanitizes a value produced by encoding/json decoding into any.
func (s *Sanitizer) Value(v any) any {
	switch t := v.(type) {
	case string:
		return s.String(t)

	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[s.String(k)] = s.Value(val)
		}
		return out

	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = s.Value(val)
		}
		return out

	default:
		return v
	}
}
