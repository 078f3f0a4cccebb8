package adversarial_tests

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jamesprial/go-zhihu-oauth/adversarial_tests/helpers"
	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
	"github.com/jamesprial/go-zhihu-oauth/pkg/types"
	"github.com/jamesprial/go-zhihu-oauth/test_helpers"
)

// TestMalformedTokenResponses checks that no sign-in body short of a valid
// token logs the client in.
func TestMalformedTokenResponses(t *testing.T) {
	generator := helpers.NewJSONGenerator()

	for name, body := range generator.MalformedTokenResponses() {
		t.Run(name, func(t *testing.T) {
			server := newServer(t)
			server.SetMethodResponse(http.MethodPost, "sign_in", &test_helpers.MockResponse{Status: http.StatusOK, Body: body})
			client := newLoggedOutClient(t, server.URL(), nil)

			err := client.Login(context.Background(), "user@example.com", "pw", "")
			var authErr *pkgerrs.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthError, got %v", err)
			}
			if client.IsLogin() {
				t.Error("a rejected sign-in must not install a token")
			}
		})
	}
}

// TestSignInServerErrors checks that failed sign-ins keep the status and the
// service's message.
func TestSignInServerErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "wrong password",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"code":100005,"name":"ERR_LOGIN_PASSWORD","message":"wrong password"}}`,
			wantMessage: "wrong password",
		},
		{
			name:        "html gateway page",
			status:      http.StatusBadGateway,
			body:        "<html>502</html>",
			wantMessage: "<html>502</html>",
		},
		{
			name:        "empty body",
			status:      http.StatusServiceUnavailable,
			body:        "",
			wantMessage: http.StatusText(http.StatusServiceUnavailable),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t)
			server.SetMethodResponse(http.MethodPost, "sign_in", &test_helpers.MockResponse{Status: tt.status, Body: tt.body})
			client := newLoggedOutClient(t, server.URL(), nil)

			err := client.Login(context.Background(), "user@example.com", "pw", "")
			var authErr *pkgerrs.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthError, got %v", err)
			}
			if authErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, authErr.StatusCode)
			}
			if !strings.Contains(authErr.Error(), tt.wantMessage) {
				t.Errorf("expected %q in %q", tt.wantMessage, authErr.Error())
			}
		})
	}
}

// TestCaptchaTampering checks that broken captcha images are reported as
// malformed rather than handed to the user.
func TestCaptchaTampering(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not base64", body: `{"img_base64":"!!!not base64!!!"}`},
		{name: "empty image", body: `{"img_base64":""}`},
		{name: "missing image", body: `{"captcha":"elsewhere"}`},
		{name: "array", body: `["R0lGODlh"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newServer(t)
			server.RequireCaptcha("", "abcd")
			server.SetMethodResponse(http.MethodPut, "captcha", &test_helpers.MockResponse{Status: http.StatusAccepted, Body: tt.body})
			client := newLoggedOutClient(t, server.URL(), nil)

			_, err := client.Captcha(context.Background())
			var malformed *pkgerrs.MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedResponseError, got %v", err)
			}
		})
	}
}

// TestWrongCaptchaNeverSignsIn checks that a rejected captcha stops the
// login before the password is sent.
func TestWrongCaptchaNeverSignsIn(t *testing.T) {
	server := newServer(t)
	server.RequireCaptcha("R0lGODlh", "right")
	client := newLoggedOutClient(t, server.URL(), nil)

	err := client.Login(context.Background(), "user@example.com", "pw", "wrong")
	var authErr *pkgerrs.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if server.CallCount("sign_in") != 0 {
		t.Error("the password must not be sent after a rejected captcha")
	}
}

// TestLoginFormCarriesNoSecret checks that the client secret only signs the
// form and is never sent.
func TestLoginFormCarriesNoSecret(t *testing.T) {
	server := newServer(t)
	client := newLoggedOutClient(t, server.URL(), nil)

	if err := client.Login(context.Background(), "user@example.com", "pw", ""); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	for _, req := range server.Requests() {
		for key, values := range req.Form {
			for _, v := range values {
				if strings.Contains(v, "adversarial-secret") {
					t.Errorf("%s %s leaked the secret in form field %s", req.Method, req.Path, key)
				}
			}
		}
		if strings.Contains(req.Query.Encode(), "adversarial-secret") {
			t.Errorf("%s %s leaked the secret in the query", req.Method, req.Path)
		}
		if req.Path != "sign_in" && req.Form.Get("password") != "" {
			t.Errorf("%s %s carried the password", req.Method, req.Path)
		}
	}
}

// TestConcurrentTokenSwaps checks that requests made while the token is
// being replaced always carry one complete token.
func TestConcurrentTokenSwaps(t *testing.T) {
	server := newServer(t)
	server.SetJSON("people/self", `{"id":"me","name":"Me"}`)
	client := newClient(t, server.URL(), nil)

	valid := map[string]bool{"Bearer mock_access_token": true}
	for i := range 10 {
		valid[fmt.Sprintf("Bearer token-%d", i)] = true
	}

	errs := helpers.CoordinatedStart(40, func(id int) error {
		if id%2 == 0 {
			return client.SetToken(&types.Token{AccessToken: fmt.Sprintf("token-%d", id%10), UserID: "123456"})
		}
		_, err := client.TestAPI(context.Background(), http.MethodGet, "people/self", nil, nil)
		return err
	})
	for _, err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	for _, req := range server.Requests() {
		if got := req.Headers.Get("Authorization"); !valid[got] {
			t.Errorf("request carried an unexpected Authorization header %q", got)
		}
	}
}
