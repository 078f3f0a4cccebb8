package zhihu

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jamesprial/go-zhihu-oauth/internal"
	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

const (
	// DefaultBaseURL is the default Zhihu API base URL
	DefaultBaseURL = "https://api.zhihu.com/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-zhihu-oauth/0.1"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// DefaultPageSize is the number of items requested per listing page
	DefaultPageSize = 20
)

// Config holds the configuration for the Zhihu client.
//
// ClientID and ClientSecret identify the application to the sign-in endpoint
// and are always required. There are no built-in defaults for them.
//
//	config := &Config{
//		ClientID:     "your-client-id",
//		ClientSecret: "your-client-secret",
//	}
type Config struct {
	// ClientID and ClientSecret sign the password-grant login.
	ClientID     string
	ClientSecret string

	// UserAgent string to identify your application.
	// Defaults to DefaultUserAgent if not specified.
	UserAgent string

	// BaseURL for the Zhihu API. Every detail, listing and login path is
	// resolved against it. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient to use for requests.
	// Defaults to an HTTP/2 capable, OpenTelemetry instrumented client with DefaultTimeout.
	HTTPClient *http.Client

	// Logger for structured diagnostics.
	// Optional. If provided, debug information will be logged during API calls.
	Logger *slog.Logger

	// RateLimit throttles outgoing requests. Nil uses the internal defaults.
	RateLimit *internal.RateLimitConfig

	// PageSize is the limit sent with the first page of every listing.
	// Defaults to DefaultPageSize; must be between 1 and 100.
	PageSize int
}

// Client is the Zhihu API client. It owns the login state and builds lazily
// resolved entities. Entities created by a Client fetch through it, so they
// see the token installed by Login, SetToken or LoadToken at fetch time.
//
//	client, err := NewClient(config)
//	if err != nil {
//		return err
//	}
//	if err := client.LoadToken("token.json"); err != nil {
//		return err
//	}
//	answer, err := client.Answer(94150403)
//	if err != nil {
//		return err
//	}
//	votes, err := answer.VoteupCount(ctx)
type Client struct {
	config    *Config
	api       *internal.Client
	auth      *internal.Authenticator
	validator *internal.Validator
	session   *entity.Session

	mu    sync.RWMutex
	token *types.Token
}

// NewClient creates a new Zhihu client with the provided configuration.
// It validates the configuration and fills in defaults; it performs no
// network I/O.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, &pkgerrs.ConfigError{Field: "ClientID", Message: "ClientID and ClientSecret are required"}
	}

	validator := internal.NewValidator()

	// Set defaults
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if err := validator.ValidateUserAgent(config.UserAgent); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "UserAgent", Message: err.Error()}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = internal.NewHTTPClient(DefaultTimeout)
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.PageSize == 0 {
		config.PageSize = DefaultPageSize
	}
	if err := validator.ValidatePageSize(config.PageSize); err != nil {
		return nil, err
	}

	c := &Client{
		config:    config,
		validator: validator,
	}

	api, err := internal.NewClient(config.HTTPClient, c, config.BaseURL, config.UserAgent, config.RateLimit, config.Logger)
	if err != nil {
		return nil, err
	}
	c.api = api

	auth, err := internal.NewAuthenticator(config.HTTPClient, config.ClientID, config.ClientSecret,
		config.UserAgent, config.BaseURL, config.RateLimit, config.Logger)
	if err != nil {
		return nil, err
	}
	c.auth = auth

	c.session = &entity.Session{
		Fetcher:  api,
		Registry: registry,
		Logger:   config.Logger,
		PageSize: config.PageSize,
	}

	return c, nil
}

// Authorization implements the fetcher's credentials. Requests made before a
// token is installed fail with a StateError.
func (c *Client) Authorization(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	if token == nil {
		return "", &pkgerrs.StateError{Operation: "authorize request", Message: "need login, call Login, LoadToken or SetToken first"}
	}
	return token.Authorization(ctx)
}

// NeedCaptcha reports whether the next Login must carry a solved captcha.
func (c *Client) NeedCaptcha(ctx context.Context) (bool, error) {
	return c.auth.NeedCaptcha(ctx)
}

// Captcha returns a fresh captcha image (GIF bytes) to be solved by a human.
func (c *Client) Captcha(ctx context.Context) ([]byte, error) {
	return c.auth.Captcha(ctx)
}

// Login signs in with email and password. If the service demands a captcha
// and captcha is empty, Login returns a *NeedCaptchaError; fetch the image
// with Captcha and call Login again with the solved text.
func (c *Client) Login(ctx context.Context, email, password, captcha string) error {
	if err := c.validator.ValidateLogin(email, password); err != nil {
		return err
	}

	need, err := c.auth.NeedCaptcha(ctx)
	if err != nil {
		return err
	}
	if need {
		if captcha == "" {
			return &pkgerrs.NeedCaptchaError{}
		}
		if err := c.auth.SubmitCaptcha(ctx, captcha); err != nil {
			return err
		}
	}

	token, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	c.config.Logger.Debug("logged in", "user_id", token.UserID, "expires_in", token.ExpiresIn)
	return c.SetToken(token)
}

// SetToken installs a token obtained elsewhere.
func (c *Client) SetToken(token *types.Token) error {
	if err := token.Validate(); err != nil {
		return &pkgerrs.AuthError{Message: "invalid token", Err: err}
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// Token returns a copy of the installed token, or nil before login.
func (c *Client) Token() *types.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return nil
	}
	token := *c.token
	return &token
}

// IsLogin reports whether a token is installed.
func (c *Client) IsLogin() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil
}

// TestAPI performs a raw authenticated request and returns the JSON body.
// path may be relative to BaseURL or absolute.
func (c *Client) TestAPI(ctx context.Context, method, path string, params, form url.Values) (json.RawMessage, error) {
	if !c.IsLogin() {
		return nil, &pkgerrs.StateError{Operation: "test api", Message: "need login"}
	}
	if err := c.validator.ValidateMethod(method); err != nil {
		return nil, err
	}
	return c.api.Request(ctx, method, path, params, form)
}

// Me returns the logged-in user. It requires login.
func (c *Client) Me() (*Me, error) {
	token := c.Token()
	if token == nil {
		return nil, &pkgerrs.StateError{Operation: "me", Message: "need login"}
	}
	return build[*Me](c, KindMe, token.UserID)
}

// Answer returns the answer with the given id. Nothing is fetched until a field is read.
func (c *Client) Answer(id int64) (*Answer, error) {
	return buildNumeric[*Answer](c, KindAnswer, id)
}

// Article returns the article with the given id.
func (c *Client) Article(id int64) (*Article, error) {
	return buildNumeric[*Article](c, KindArticle, id)
}

// Question returns the question with the given id.
func (c *Client) Question(id int64) (*Question, error) {
	return buildNumeric[*Question](c, KindQuestion, id)
}

// Topic returns the topic with the given id.
func (c *Client) Topic(id int64) (*Topic, error) {
	return buildNumeric[*Topic](c, KindTopic, id)
}

// Collection returns the collection with the given id.
func (c *Client) Collection(id int64) (*Collection, error) {
	return buildNumeric[*Collection](c, KindCollection, id)
}

// People returns the user with the given url token or hash id.
func (c *Client) People(id string) (*People, error) {
	if err := c.validator.ValidateTokenID(KindPeople, id); err != nil {
		return nil, err
	}
	return build[*People](c, KindPeople, types.ID(id))
}

// Column returns the column with the given slug.
func (c *Client) Column(id string) (*Column, error) {
	if err := c.validator.ValidateTokenID(KindColumn, id); err != nil {
		return nil, err
	}
	return build[*Column](c, KindColumn, types.ID(id))
}

// Entity builds an entity of any registered kind from its textual id. It is
// the dynamic counterpart of the typed accessors.
func (c *Client) Entity(kind, id string) (entity.Entity, error) {
	k, ok := registry.Lookup(kind)
	if !ok {
		return nil, &pkgerrs.InvalidReferenceError{Field: "kind", Kind: kind, Message: "unknown entity kind"}
	}
	if k.NumericID {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, &pkgerrs.ConfigError{Field: kind + " id", Message: "id must be an integer"}
		}
		if err := c.validator.ValidateNumericID(kind, n); err != nil {
			return nil, err
		}
	} else if err := c.validator.ValidateTokenID(kind, id); err != nil {
		return nil, err
	}
	return registry.New(kind, types.ID(id), nil, c.session)
}

func buildNumeric[T entity.Entity](c *Client, kind string, id int64) (T, error) {
	if err := c.validator.ValidateNumericID(kind, id); err != nil {
		var zero T
		return zero, err
	}
	return build[T](c, kind, types.ID(strconv.FormatInt(id, 10)))
}

func build[T entity.Entity](c *Client, kind string, id types.ID) (T, error) {
	var zero T
	e, err := registry.New(kind, id, nil, c.session)
	if err != nil {
		return zero, err
	}
	typed, ok := e.(T)
	if !ok {
		return zero, &pkgerrs.InvalidReferenceError{Field: "kind", Kind: kind, Message: "registered constructor returned the wrong type"}
	}
	return typed, nil
}
