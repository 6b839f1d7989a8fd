package api

import (
	"net/http"
	"testing"
)

func TestRegisterIssuesSessionAndRequiresOnboarding(t *testing.T) {
	env := newTestEnv(t, nil)

	session := env.register(t, " Mina@Example.com ")
	if session.AccessToken == "" || session.RefreshToken == "" || session.TokenType != "Bearer" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.User.Email != "mina@example.com" || session.User.OnboardingCompleted {
		t.Fatalf("unexpected user %+v", session.User)
	}
	if session.ExpiresIn != 900 {
		t.Fatalf("expected 900 second access token, got %d", session.ExpiresIn)
	}
	if !env.redis.Exists("refresh:" + session.RefreshToken) {
		t.Fatal("expected refresh token stored in redis")
	}

	status, raw := env.do(t, http.MethodGet, "/api/dashboard", session.AccessToken, nil)
	if status != http.StatusForbidden || readAPIError(t, raw) != "onboarding required" {
		t.Fatalf("expected 403 onboarding required, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodGet, "/api/me", session.AccessToken, nil); status != http.StatusOK {
		t.Fatalf("expected /api/me to be reachable during onboarding, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodPost, "/api/onboarding/complete", session.AccessToken, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 completing without profile, got %d: %s", status, raw)
	}
}

func TestRegisterValidationStatuses(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "mina@example.com")

	tests := []struct {
		name    string
		request registerRequest
		status  int
		message string
	}{
		{
			name:    "duplicate email",
			request: registerRequest{Email: "MINA@example.com", Password: "StrongPass1", ConfirmPassword: "StrongPass1"},
			status:  http.StatusConflict,
			message: "email already exists",
		},
		{
			name:    "weak password",
			request: registerRequest{Email: "weak@example.com", Password: "weakpass", ConfirmPassword: "weakpass"},
			status:  http.StatusBadRequest,
			message: "weak password",
		},
		{
			name:    "mismatch",
			request: registerRequest{Email: "other@example.com", Password: "StrongPass1", ConfirmPassword: "StrongPass2"},
			status:  http.StatusBadRequest,
			message: "passwords do not match",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, raw := env.do(t, http.MethodPost, "/api/auth/register", "", tc.request)
			if status != tc.status || readAPIError(t, raw) != tc.message {
				t.Fatalf("expected %d %q, got %d: %s", tc.status, tc.message, status, raw)
			}
		})
	}
}

func TestLoginRejectsInvalidCredentialsAndRateLimits(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "mina@example.com")

	for attempt := 1; attempt <= loginAttemptLimit; attempt++ {
		status, raw := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "mina@example.com", Password: "WrongPass1"})
		if status != http.StatusUnauthorized || readAPIError(t, raw) != "invalid credentials" {
			t.Fatalf("attempt %d: expected 401 invalid credentials, got %d: %s", attempt, status, raw)
		}
	}

	status, raw := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "mina@example.com", Password: "StrongPass1"})
	if status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d: %s", status, raw)
	}

	status, raw = env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "unknown@example.com", Password: "StrongPass1"})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected other accounts to stay unaffected, got %d: %s", status, raw)
	}
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	env := newTestEnv(t, nil)
	registered := env.register(t, "mina@example.com")

	status, raw := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "MINA@example.com", Password: "StrongPass1"})
	if status != http.StatusOK {
		t.Fatalf("expected login status 200, got %d: %s", status, raw)
	}
	session := decodeJSON[sessionView](t, raw)
	if session.User.ID != registered.User.ID || session.RefreshToken == registered.RefreshToken {
		t.Fatalf("expected a fresh session for the same user, got %+v", session)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t, nil)
	registered := env.register(t, "mina@example.com")

	status, raw := env.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: registered.RefreshToken})
	if status != http.StatusOK {
		t.Fatalf("expected refresh status 200, got %d: %s", status, raw)
	}
	rotated := decodeJSON[sessionView](t, raw)
	if rotated.RefreshToken == "" || rotated.RefreshToken == registered.RefreshToken {
		t.Fatalf("expected a new refresh token, got %q", rotated.RefreshToken)
	}

	status, raw = env.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: registered.RefreshToken})
	if status != http.StatusUnauthorized || readAPIError(t, raw) != "invalid refresh token" {
		t.Fatalf("expected reused refresh token to be rejected, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{}); status != http.StatusUnauthorized {
		t.Fatalf("expected blank refresh token to be rejected, got %d: %s", status, raw)
	}
}

func TestLogoutRevokesRefreshAndAccessTokens(t *testing.T) {
	env := newTestEnv(t, nil)
	session := env.register(t, "mina@example.com")

	status, raw := env.do(t, http.MethodPost, "/api/auth/logout", session.AccessToken, refreshRequest{RefreshToken: session.RefreshToken})
	if status != http.StatusOK {
		t.Fatalf("expected logout status 200, got %d: %s", status, raw)
	}

	if status, raw := env.do(t, http.MethodGet, "/api/me", session.AccessToken, nil); status != http.StatusUnauthorized {
		t.Fatalf("expected deny-listed access token to be rejected, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: session.RefreshToken}); status != http.StatusUnauthorized {
		t.Fatalf("expected revoked refresh token to be rejected, got %d: %s", status, raw)
	}
}

func TestAuthRequiredRejectsMissingAndMalformedTokens(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, token := range []string{"", "not-a-jwt"} {
		status, raw := env.do(t, http.MethodGet, "/api/me", token, nil)
		if status != http.StatusUnauthorized || readAPIError(t, raw) != "unauthorized" {
			t.Fatalf("token %q: expected 401 unauthorized, got %d: %s", token, status, raw)
		}
	}
}

func TestHealthAndNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	if status, raw := env.do(t, http.MethodGet, "/healthz", "", nil); status != http.StatusOK {
		t.Fatalf("expected health 200, got %d: %s", status, raw)
	}
	status, raw := env.do(t, http.MethodGet, "/api/nowhere", "", nil)
	if status != http.StatusNotFound || readAPIError(t, raw) != "not found" {
		t.Fatalf("expected 404 not found, got %d: %s", status, raw)
	}
}

func TestLogoutLeavesRefreshTokensOfOtherUsers(t *testing.T) {
	env := newTestEnv(t, nil)
	mina := env.register(t, "mina@example.com")
	jun := env.register(t, "jun@example.com")

	status, raw := env.do(t, http.MethodPost, "/api/auth/logout", mina.AccessToken, refreshRequest{RefreshToken: jun.RefreshToken})
	if status != http.StatusOK {
		t.Fatalf("expected logout status 200, got %d: %s", status, raw)
	}

	if status, raw := env.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: jun.RefreshToken}); status != http.StatusOK {
		t.Fatalf("expected another user's refresh token to survive, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodPost, "/api/auth/refresh", "", refreshRequest{RefreshToken: mina.RefreshToken}); status != http.StatusOK {
		t.Fatalf("expected the caller's untouched refresh token to still work, got %d: %s", status, raw)
	}
}
