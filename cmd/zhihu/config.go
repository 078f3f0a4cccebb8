package main

import (
	"os"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	zhihu "github.com/jamesprial/go-zhihu-oauth"
	"github.com/jamesprial/go-zhihu-oauth/internal"
)

// fileConfig is the on-disk YAML configuration.
//
//	client_id: 8d5227e0aaaa4797a763ac64e0c3b8
//	client_secret: ecbefbf6b17e47ecb9035107866380
//	page_size: 20
//	rate_limit:
//	  requests_per_minute: 60
//	  burst: 10
type fileConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	UserAgent    string `yaml:"user_agent"`
	BaseURL      string `yaml:"base_url"`
	PageSize     int    `yaml:"page_size"`
	TokenFile    string `yaml:"token_file"`

	RateLimit *struct {
		RequestsPerMinute float64 `yaml:"requests_per_minute"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// loadConfig reads path. A missing file yields an empty config so that
// credentials can come from flags or the environment alone.
func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// clientConfig merges explicit overrides over the file values.
func (f *fileConfig) clientConfig(clientID, clientSecret string) *zhihu.Config {
	cfg := &zhihu.Config{
		ClientID:     f.ClientID,
		ClientSecret: f.ClientSecret,
		UserAgent:    f.UserAgent,
		BaseURL:      f.BaseURL,
		PageSize:     f.PageSize,
	}
	if clientID != "" {
		cfg.ClientID = clientID
	}
	if clientSecret != "" {
		cfg.ClientSecret = clientSecret
	}
	if f.RateLimit != nil {
		cfg.RateLimit = &internal.RateLimitConfig{
			RequestsPerMinute: f.RateLimit.RequestsPerMinute,
			Burst:             f.RateLimit.Burst,
		}
	}
	return cfg
}
