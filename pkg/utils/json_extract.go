package utils

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject removes markdown fences and surrounding prose and returns
// the first balanced JSON object found in response.
func ExtractJSONObject(response string) (string, error) {
	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```JSON", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	if start == -1 {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	end := findMatchingBrace(response, start)
	if end == -1 {
		return "", fmt.Errorf("%w: unbalanced JSON object", ErrMalformedResponse)
	}
	return response[start : end+1], nil
}

// DecodeJSONResponse extracts and decodes the JSON object in raw into v.
func DecodeJSONResponse(raw string, v any) error {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// findMatchingBrace finds the matching closing brace for an opening brace
func findMatchingBrace(s string, start int) int {
	if start >= len(s) || s[start] != '{' {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' && inString {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch char {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
