package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/terraincognita07/glowlog/internal/cache"
	"github.com/terraincognita07/glowlog/internal/db"
	"github.com/terraincognita07/glowlog/internal/services"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	app      *fiber.App
	database *gorm.DB
	redis    *miniredis.Miniredis
}

type completerStub struct {
	reply string
	err   error
	calls int
}

func (stub *completerStub) Complete(ctx context.Context, system string, prompt string) (string, error) {
	stub.calls++
	return stub.reply, stub.err
}

func newTestEnv(t *testing.T, completer services.Completer) *testEnv {
	t.Helper()

	database, err := db.Open(db.Options{
		Driver:     db.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "glowlog-api-test.db"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(database)
	})

	redisServer := miniredis.RunT(t)
	client := cache.NewClient(cache.Options{Addr: redisServer.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	handler, err := NewHandler(Options{
		Database:     database,
		Sessions:     cache.NewSessionStore(client),
		SecretKey:    []byte(testSecretKey),
		Location:     time.UTC,
		Completer:    completer,
		Logger:       zap.NewNop(),
		Clock:        func() time.Time { return testNow },
		PasswordCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	return &testEnv{
		app:      NewApp(handler, zap.NewNop()),
		database: database,
		redis:    redisServer,
	}
}

func (env *testEnv) do(t *testing.T, method string, path string, token string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return response.StatusCode, raw
}

func decodeJSON[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		t.Fatalf("decode %s: %v", string(raw), err)
	}
	return value
}

func readAPIError(t *testing.T, raw []byte) string {
	t.Helper()
	return decodeJSON[map[string]string](t, raw)["error"]
}

func (env *testEnv) register(t *testing.T, email string) sessionView {
	t.Helper()

	status, raw := env.do(t, http.MethodPost, "/api/auth/register", "", registerRequest{
		Email:           email,
		Password:        "StrongPass1",
		ConfirmPassword: "StrongPass1",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d: %s", status, raw)
	}
	return decodeJSON[sessionView](t, raw)
}

// onboardedUser registers a user and walks through onboarding, returning the
// session.
func (env *testEnv) onboardedUser(t *testing.T, email string) sessionView {
	t.Helper()

	session := env.register(t, email)
	if status, raw := env.do(t, http.MethodPost, "/api/onboarding/profile", session.AccessToken, onboardingProfileRequest{
		Nickname:  "mina",
		BirthYear: 1995,
		Gender:    "female",
	}); status != http.StatusOK {
		t.Fatalf("expected profile status 200, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodPost, "/api/onboarding/concerns", session.AccessToken, onboardingConcernsRequest{
		Concerns: []string{"acne", "redness"},
	}); status != http.StatusOK {
		t.Fatalf("expected concerns status 200, got %d: %s", status, raw)
	}
	if status, raw := env.do(t, http.MethodPost, "/api/onboarding/complete", session.AccessToken, nil); status != http.StatusOK {
		t.Fatalf("expected complete status 200, got %d: %s", status, raw)
	}
	return session
}

func (env *testEnv) procedureID(t *testing.T, token string, name string) uint {
	t.Helper()

	status, raw := env.do(t, http.MethodGet, "/api/procedures", token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected procedures status 200, got %d: %s", status, raw)
	}
	payload := decodeJSON[struct {
		Procedures []struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"procedures"`
	}](t, raw)
	for _, procedure := range payload.Procedures {
		if procedure.Name == name {
			return procedure.ID
		}
	}
	t.Fatalf("procedure %q not in catalog", name)
	return 0
}
