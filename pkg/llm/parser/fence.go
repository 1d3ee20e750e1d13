// Package parser provides utilities for recovering structured data from
// raw model output.
package parser

import "strings"

// StripFences removes a surrounding Markdown code fence from a model
// response, if present. Models routinely wrap JSON payloads in ```json
// blocks or prepend prose-free fences even when asked for bare output;
// this normalizes both forms to the inner text.
//
// Only a single leading and trailing fence are removed. The leading
// fence may carry a language tag (```json, ```JSON, ```). Surrounding
// whitespace is always trimmed. Input without fences is returned
// trimmed but otherwise untouched.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)

	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")

	// Drop the language tag, which runs to the end of the first line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if isLanguageTag(firstLine) {
			s = s[idx+1:]
		}
	} else {
		// Single-line input like "```{}```": strip any leading tag token.
		s = strings.TrimSpace(s)
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// isLanguageTag reports whether the text after an opening fence looks
// like a fence language tag rather than payload content.
func isLanguageTag(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
