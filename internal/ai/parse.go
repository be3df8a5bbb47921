// Package ai provides direct Anthropic API access and utilities for working
// with LLM-produced text.
package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Pre-compiled patterns; compiling per parse is measurably slower.
var (
	codeFenceRegex     = regexp.MustCompile("(?s)```(?:json|javascript|js)?\\s*\\n?([\\s\\S]*?)\\n?```")
	trailingCommaRegex = regexp.MustCompile(`,(\s*[}\]])`)
	objectRegex        = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	arrayRegex         = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
)

// ParseResult reports the outcome of a lenient JSON parse.
type ParseResult[T any] struct {
	Success bool
	Data    T
	Error   string
}

// Parse extracts a JSON value of type T from LLM output text. Models wrap
// JSON in prose and code fences and occasionally emit trailing commas, so a
// direct parse is tried first and progressively looser strategies after:
//
//  1. direct parse
//  2. strip markdown code fences
//  3. drop trailing commas
//  4. extract the outermost object/array from mixed content
func Parse[T any](text string) ParseResult[T] {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return failure[T]("empty input")
	}

	if v, err := tryParse[T](trimmed); err == nil {
		return success(v)
	}

	unfenced := stripCodeFences(trimmed)
	if v, err := tryParse[T](unfenced); err == nil {
		return success(v)
	}

	cleaned := trailingCommaRegex.ReplaceAllString(unfenced, "$1")
	if v, err := tryParse[T](cleaned); err == nil {
		return success(v)
	}

	if extracted := extractJSON(cleaned); extracted != "" {
		if v, err := tryParse[T](extracted); err == nil {
			return success(v)
		}
	}

	return failure[T]("no parseable JSON found")
}

func tryParse[T any](text string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(text), &v)
	return v, err
}

func success[T any](v T) ParseResult[T] {
	return ParseResult[T]{Success: true, Data: v}
}

func failure[T any](msg string) ParseResult[T] {
	return ParseResult[T]{Error: msg}
}

// stripCodeFences unwraps ```json ... ``` blocks wherever they appear.
func stripCodeFences(text string) string {
	cleaned := codeFenceRegex.ReplaceAllString(text, "$1")
	return strings.TrimSpace(cleaned)
}

// extractJSON pulls the outermost JSON object or array out of mixed content.
// Returns "" when nothing JSON-shaped is present.
func extractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") {
		return arrayRegex.FindString(trimmed)
	}
	if m := objectRegex.FindString(trimmed); m != "" {
		return m
	}
	return arrayRegex.FindString(trimmed)
}
