package helpers

import (
	"fmt"
	"strings"
)

// JSONGenerator produces malformed and oversized API documents.
type JSONGenerator struct{}

// NewJSONGenerator creates a new JSON generator
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// MalformedDetailDocuments are bodies that are valid JSON but not detail objects.
func (g *JSONGenerator) MalformedDetailDocuments() map[string]string {
	return map[string]string{
		"array":        `[{"id": 1}]`,
		"string":       `"answer"`,
		"number":       `42`,
		"boolean":      `true`,
		"null":         `null`,
		"nested array": `[[[]]]`,
	}
}

// MalformedPages are listing bodies with a broken shape.
func (g *JSONGenerator) MalformedPages() map[string]string {
	return map[string]string{
		"array body":        `[]`,
		"missing data":      `{"paging": {"is_end": true, "next": ""}}`,
		"data is object":    `{"data": {"id": 1}, "paging": {"is_end": true, "next": ""}}`,
		"data is string":    `{"data": "items", "paging": {"is_end": true, "next": ""}}`,
		"missing paging":    `{"data": []}`,
		"paging is array":   `{"data": [], "paging": []}`,
		"is_end is string":  `{"data": [], "paging": {"is_end": "yes", "next": ""}}`,
		"next is number":    `{"data": [], "paging": {"is_end": false, "next": 7}}`,
		"paging is a token": `{"data": [], "paging": "end"}`,
	}
}

// MalformedTokenResponses are sign-in bodies that must not produce a token.
func (g *JSONGenerator) MalformedTokenResponses() map[string]string {
	return map[string]string{
		"empty object":          `{}`,
		"no access token":       `{"user_id": 1, "expires_in": 100}`,
		"empty access token":    `{"access_token": "", "user_id": 1}`,
		"no user id":            `{"access_token": "abc"}`,
		"access token number":   `{"access_token": 12345, "user_id": 1}`,
		"expires_in string":     `{"access_token": "abc", "user_id": 1, "expires_in": "soon"}`,
		"array":                 `[{"access_token": "abc", "user_id": 1}]`,
		"user id object":        `{"access_token": "abc", "user_id": {"id": 1}}`,
		"string error envelope": `{"error": "account locked"}`,
	}
}

// DeeplyNested returns an object nested depth levels under "x".
func (g *JSONGenerator) DeeplyNested(depth int) string {
	return strings.Repeat(`{"x":`, depth) + `1` + strings.Repeat(`}`, depth)
}

// LargePage returns a listing page carrying n people items.
func (g *JSONGenerator) LargePage(n int, isEnd bool, next string) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id":"user-%d","name":"User %d","type":"people"}`, i, i)
	}
	return fmt.Sprintf(`{"data":[%s],"paging":{"is_end":%t,"next":%q}}`, strings.Join(items, ","), isEnd, next)
}

// HostileStrings are field values that must round-trip unchanged.
func (g *JSONGenerator) HostileStrings() []string {
	return []string{
		"",
		"<script>alert(1)</script>",
		"'; DROP TABLE answers; --",
		"\u0000\u0001\u001f",
		"‮evil",
		"emoji 🦫 and 中文",
		strings.Repeat("长", 10000),
	}
}
