package openai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the first balanced JSON object in a model reply.
// Replies wrapped in markdown code fences or surrounded by prose are accepted.
func ExtractJSON(content string) (string, error) {
	if start := strings.IndexByte(content, '{'); start >= 0 {
		if candidate, ok := balancedObject(content[start:]); ok && json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	return "", fmt.Errorf("no valid JSON object found in response")
}

func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}

	return "", false
}

// decodeReply extracts and unmarshals a JSON object from a model reply.
func decodeReply[T any](content string) (*T, error) {
	raw, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("unmarshal reply: %w", err)
	}
	return &out, nil
}
