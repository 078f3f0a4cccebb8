package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

const (
	// DefaultItemsKey is the field holding the item array in listing responses.
	DefaultItemsKey = "data"
	pagingKey       = "paging"

	maxErrorBodyPreview = 200
)

// Parser handles parsing of Zhihu API responses.
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseDocument decodes an entity detail response. url is only used for error context.
func (p *Parser) ParseDocument(url string, body json.RawMessage) (types.Document, error) {
	doc, err := types.ParseDocument(body)
	if err != nil {
		return nil, &pkgerrs.MalformedResponseError{URL: url, Expected: "a JSON object detail document", Err: err}
	}
	return doc, nil
}

// ParsePage decodes one page of a listing endpoint. The response must be an
// object carrying an item array under itemsKey and a "paging" object.
func (p *Parser) ParsePage(url string, body json.RawMessage, itemsKey string) (*types.Page, error) {
	if itemsKey == "" {
		itemsKey = DefaultItemsKey
	}

	doc, err := types.ParseDocument(body)
	if err != nil {
		return nil, &pkgerrs.MalformedResponseError{URL: url, Expected: "a JSON object listing page", Err: err}
	}

	rawItems, ok := doc.Lookup(itemsKey)
	if !ok {
		return nil, &pkgerrs.MalformedResponseError{URL: url, Expected: fmt.Sprintf("an item array under %q", itemsKey)}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(rawItems, &items); err != nil {
		return nil, &pkgerrs.MalformedResponseError{URL: url, Expected: fmt.Sprintf("an item array under %q", itemsKey), Err: err}
	}

	rawPaging, ok := doc.Lookup(pagingKey)
	if !ok {
		return nil, &pkgerrs.MalformedResponseError{URL: url, Expected: "a paging object"}
	}

	var paging types.Paging
	if err := json.Unmarshal(rawPaging, &paging); err != nil {
		return nil, &pkgerrs.MalformedResponseError{URL: url, Expected: "a paging object", Err: err}
	}

	return &types.Page{Items: items, Paging: paging}, nil
}

// errorDocument is the error envelope the API returns on failure.
type errorDocument struct {
	Error *struct {
		Code    int    `json:"code"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseAPIError builds an APIError from a failed response body. Bodies that
// are not the usual error envelope fall back to a truncated preview.
func (p *Parser) ParseAPIError(status int, body []byte) *pkgerrs.APIError {
	apiErr := &pkgerrs.APIError{StatusCode: status}

	var doc errorDocument
	if err := json.Unmarshal(body, &doc); err == nil && doc.Error != nil {
		apiErr.Code = doc.Error.Code
		apiErr.Name = doc.Error.Name
		apiErr.Message = doc.Error.Message
		return apiErr
	}

	preview := strings.TrimSpace(string(body))
	if len(preview) > maxErrorBodyPreview {
		preview = preview[:maxErrorBodyPreview]
	}
	if preview == "" {
		preview = http.StatusText(status)
	}
	apiErr.Message = preview
	return apiErr
}

// ParseServiceError reports an "error" entry embedded in an otherwise
// successful response, as the captcha and sign-in endpoints do.
func (p *Parser) ParseServiceError(body json.RawMessage) (string, bool) {
	doc, err := types.ParseDocument(body)
	if err != nil {
		return "", false
	}
	raw, ok := doc.Lookup("error")
	if !ok {
		return "", false
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg, true
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
		return nested.Message, true
	}
	return string(raw), true
}

// ParseToken decodes a sign-in response into a Token.
func (p *Parser) ParseToken(url string, body json.RawMessage) (*types.Token, error) {
	var token types.Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, &pkgerrs.MalformedResponseError{URL: url, Expected: "a token document", Err: err}
	}
	if err := token.Validate(); err != nil {
		return nil, &pkgerrs.MalformedResponseError{URL: url, Expected: "a token document", Err: err}
	}
	return &token, nil
}
