package zhihu

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

const tokenFileMode = 0o600

// LoadToken installs a token previously written by SaveToken.
func (c *Client) LoadToken(path string) error {
	token, err := ReadTokenFile(path)
	if err != nil {
		return err
	}
	if token.Expired(time.Now()) {
		c.config.Logger.Warn("loaded token has expired", "path", path, "created_at", token.CreatedAt)
	}
	return c.SetToken(token)
}

// SaveToken writes the installed token to path as JSON, readable only by the owner.
func (c *Client) SaveToken(path string) error {
	token := c.Token()
	if token == nil {
		return &pkgerrs.StateError{Operation: "save token", Message: "need login"}
	}
	return WriteTokenFile(path, token)
}

// ReadTokenFile reads and validates a token file.
func ReadTokenFile(path string) (*types.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var token types.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "token file", Message: fmt.Sprintf("%s is not a token file: %v", path, err)}
	}
	if err := token.Validate(); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "token file", Message: fmt.Sprintf("%s: %v", path, err)}
	}
	return &token, nil
}

// WriteTokenFile writes token to path, replacing any existing file.
func WriteTokenFile(path string, token *types.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, tokenFileMode); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, tokenFileMode); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}
