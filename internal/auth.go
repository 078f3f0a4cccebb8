package internal

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
)

const (
	defaultCaptchaPath = "captcha"
	defaultSignInPath  = "sign_in"

	loginGrantType = "password"
	loginSource    = "com.zhihu.android"
)

// Authenticator performs the signed password-grant login. Its own requests
// carry the application's "oauth <client_id>" authorization rather than a user token.
type Authenticator struct {
	api          *Client
	parser       *Parser
	clientID     string
	clientSecret string
	captchaPath  string
	signInPath   string
	now          func() time.Time
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(httpClient *http.Client, clientID, clientSecret, userAgent, baseURL string, rateCfg *RateLimitConfig, logger *slog.Logger) (*Authenticator, error) {
	a := &Authenticator{
		parser:       NewParser(),
		clientID:     clientID,
		clientSecret: clientSecret,
		captchaPath:  defaultCaptchaPath,
		signInPath:   defaultSignInPath,
		now:          time.Now,
	}

	api, err := NewClient(httpClient, a, baseURL, userAgent, rateCfg, logger)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "failed to create login client", Err: err}
	}
	a.api = api

	return a, nil
}

// Authorization implements Credentials for login requests.
func (a *Authenticator) Authorization(ctx context.Context) (string, error) {
	return "oauth " + a.clientID, nil
}

// NeedCaptcha asks the service whether the next login must carry a captcha.
func (a *Authenticator) NeedCaptcha(ctx context.Context) (bool, error) {
	body, err := a.api.Request(ctx, http.MethodGet, a.captchaPath, nil, nil)
	if err != nil {
		return false, authFailure("failed to check captcha", err)
	}

	var resp struct {
		ShowCaptcha *bool `json:"show_captcha"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.ShowCaptcha == nil {
		return false, &pkgerrs.MalformedResponseError{URL: a.captchaPath, Expected: "a JSON document with show_captcha", Err: err}
	}
	return *resp.ShowCaptcha, nil
}

// Captcha fetches a fresh captcha image. The captcha state is queried first
// because the service only issues an image to a session that has asked.
func (a *Authenticator) Captcha(ctx context.Context) ([]byte, error) {
	if _, err := a.NeedCaptcha(ctx); err != nil {
		return nil, err
	}

	body, err := a.api.Request(ctx, http.MethodPut, a.captchaPath, nil, url.Values{})
	if err != nil {
		return nil, authFailure("failed to fetch captcha", err)
	}

	var resp struct {
		ImgBase64 string `json:"img_base64"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.ImgBase64 == "" {
		return nil, &pkgerrs.MalformedResponseError{URL: a.captchaPath, Expected: "a JSON document with img_base64", Err: err}
	}

	img, err := base64.StdEncoding.DecodeString(resp.ImgBase64)
	if err != nil {
		return nil, &pkgerrs.MalformedResponseError{URL: a.captchaPath, Expected: "base64 image data", Err: err}
	}
	return img, nil
}

// SubmitCaptcha sends the solved captcha text.
func (a *Authenticator) SubmitCaptcha(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("input_text", text)

	body, err := a.api.Request(ctx, http.MethodPost, a.captchaPath, nil, form)
	if err != nil {
		return authFailure("failed to submit captcha", err)
	}
	if msg, ok := a.parser.ParseServiceError(body); ok {
		return &pkgerrs.AuthError{Message: msg}
	}
	return nil
}

// Login performs the signed password grant and returns the issued token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*types.Token, error) {
	form := url.Values{}
	form.Set("grant_type", loginGrantType)
	form.Set("source", loginSource)
	form.Set("client_id", a.clientID)
	form.Set("username", username)
	form.Set("password", password)
	form.Set("timestamp", strconv.FormatInt(a.now().Unix(), 10))
	form.Set("signature", Signature(a.clientSecret, form))

	body, err := a.api.Request(ctx, http.MethodPost, a.signInPath, nil, form)
	if err != nil {
		return nil, authFailure("login failed", err)
	}
	if msg, ok := a.parser.ParseServiceError(body); ok {
		return nil, &pkgerrs.AuthError{Message: msg}
	}

	token, err := a.parser.ParseToken(a.signInPath, body)
	if err != nil {
		return nil, &pkgerrs.AuthError{Message: "unexpected sign-in response", Err: err}
	}
	token.CreatedAt = a.now()
	return token, nil
}

// Signature computes the login signature: hex HMAC-SHA1 over
// grant_type, client_id, source and timestamp concatenated in that order.
func Signature(secret string, form url.Values) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(form.Get("grant_type")))
	mac.Write([]byte(form.Get("client_id")))
	mac.Write([]byte(form.Get("source")))
	mac.Write([]byte(form.Get("timestamp")))
	return hex.EncodeToString(mac.Sum(nil))
}

// authFailure converts a fetch error into an AuthError, keeping the API's
// own message when the service answered with an error document.
func authFailure(message string, err error) error {
	authErr := &pkgerrs.AuthError{Message: message, Err: err}

	var transportErr *pkgerrs.TransportError
	if errors.As(err, &transportErr) {
		authErr.StatusCode = transportErr.StatusCode
	}
	var apiErr *pkgerrs.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		authErr.Message = message + ": " + apiErr.Message
	}
	return authErr
}
