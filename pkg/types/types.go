package types

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document is a decoded JSON object keyed by field name. Values are kept raw so
// that each field is only decoded into its Go type when it is requested.
type Document map[string]json.RawMessage

// Lookup returns the raw value stored under name. A JSON null counts as present.
func (d Document) Lookup(name string) (json.RawMessage, bool) {
	if d == nil {
		return nil, false
	}
	raw, ok := d[name]
	return raw, ok
}

// ParseDocument decodes data into a Document. It fails if data is not a JSON object.
func ParseDocument(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}
	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ID is an entity identifier as it appears on the wire. Zhihu mixes numeric ids
// (answers, questions) with string tokens (people, columns); both are kept as text.
type ID string

// UnmarshalJSON implements json.Unmarshaler to accept either a JSON number or a JSON string.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*id = ""
		return nil
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*id = ID(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("unrecognized type for id: %s", s)
	}
	if _, err := num.Int64(); err != nil {
		return fmt.Errorf("id is not an integer: %s", s)
	}
	*id = ID(num.String())
	return nil
}

// Int64 parses the id as a base-10 integer.
func (id ID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// Paging is the pagination metadata attached to every listing response.
type Paging struct {
	// IsEnd is nil when the server omitted the flag.
	IsEnd    *bool  `json:"is_end"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Totals   *int   `json:"totals,omitempty"`
}

// Ended reports whether the server flagged this page as the last one.
func (p Paging) Ended() bool {
	return p.IsEnd != nil && *p.IsEnd
}

// Page is one decoded page of a listing endpoint.
type Page struct {
	Items  []json.RawMessage
	Paging Paging
}

// Streaming is a read-only accessor over a nested JSON object that is already
// embedded in its parent document, such as "suggest_edit" or "can_comment".
type Streaming struct {
	doc Document
}

// UnmarshalJSON implements json.Unmarshaler. Only JSON objects are accepted.
func (s *Streaming) UnmarshalJSON(data []byte) error {
	doc, err := ParseDocument(data)
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Streaming) MarshalJSON() ([]byte, error) {
	if s.doc == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.doc)
}

// Has reports whether the nested object carries name.
func (s Streaming) Has(name string) bool {
	_, ok := s.doc.Lookup(name)
	return ok
}

// Keys returns the sub-field names in unspecified order.
func (s Streaming) Keys() []string {
	keys := make([]string, 0, len(s.doc))
	for k := range s.doc {
		keys = append(keys, k)
	}
	return keys
}

// Raw returns the undecoded sub-field.
func (s Streaming) Raw(name string) (json.RawMessage, bool) {
	return s.doc.Lookup(name)
}

// String returns the sub-field as a string.
func (s Streaming) String(name string) (string, bool) {
	var v string
	return v, s.decode(name, &v)
}

// Int returns the sub-field as an integer.
func (s Streaming) Int(name string) (int64, bool) {
	var v int64
	return v, s.decode(name, &v)
}

// Bool returns the sub-field as a boolean.
func (s Streaming) Bool(name string) (bool, bool) {
	var v bool
	return v, s.decode(name, &v)
}

// Object returns a nested object sub-field as another Streaming accessor.
func (s Streaming) Object(name string) (Streaming, bool) {
	var v Streaming
	return v, s.decode(name, &v)
}

func (s Streaming) decode(name string, v any) bool {
	raw, ok := s.doc.Lookup(name)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// Relationship is the viewer's relationship to an answer or article.
type Relationship struct {
	IsAuthor     bool `json:"is_author"`
	IsAuthorized bool `json:"is_authorized"`
	IsNothelp    bool `json:"is_nothelp"`
	IsThanked    bool `json:"is_thanked"`
	// Voting is 1 for an up-vote, -1 for a down-vote and 0 for no vote.
	Voting int `json:"voting"`
}

// QuestionStatus describes moderation state of a question.
type QuestionStatus struct {
	IsLocked   bool `json:"is_locked"`
	IsClose    bool `json:"is_close"`
	IsEvaluate bool `json:"is_evaluate"`
	IsSuggest  bool `json:"is_suggest"`
}

// Token is the OAuth token issued by the sign-in endpoint.
type Token struct {
	AccessToken  string            `json:"access_token"`
	Cookie       map[string]string `json:"cookie,omitempty"`
	ExpiresIn    int64             `json:"expires_in"`
	LockIn       int64             `json:"lock_in"`
	RefreshToken string            `json:"refresh_token"`
	TokenType    string            `json:"token_type"`
	UID          string            `json:"uid"`
	UserID       ID                `json:"user_id"`
	// CreatedAt is stamped locally when the token is issued; it is not part of the
	// server response.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that the token carries the fields requests depend on.
func (t *Token) Validate() error {
	if t == nil {
		return fmt.Errorf("token is nil")
	}
	if t.AccessToken == "" {
		return fmt.Errorf("access token was empty")
	}
	if t.UserID == "" {
		return fmt.Errorf("user id was empty")
	}
	return nil
}

// Expired reports whether the token's lifetime has elapsed at now. Tokens
// without a creation stamp or lifetime never expire locally.
func (t *Token) Expired(now time.Time) bool {
	if t.CreatedAt.IsZero() || t.ExpiresIn <= 0 {
		return false
	}
	return now.After(t.CreatedAt.Add(time.Duration(t.ExpiresIn) * time.Second))
}

// Authorization returns the Authorization header value for authenticated requests.
func (t *Token) Authorization(ctx context.Context) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return strings.ToUpper(tokenType[:1]) + strings.ToLower(tokenType[1:]) + " " + t.AccessToken, nil
}
