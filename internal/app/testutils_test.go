package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/metinatakli/movie-booking-system/internal/mocks"
	"github.com/metinatakli/movie-booking-system/internal/repository"
)

const testJWTSecret = "test-secret"

type testServer struct {
	app      *Application
	store    *repository.MemoryStore
	notifier *mocks.MockNotifier
	handler  http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := Config{
		Env:   "test",
		Store: StoreMemory,
	}
	cfg.JWT.Secret = testJWTSecret
	cfg.Booking.MaxAttempts = 3
	cfg.Booking.StoreTimeout = time.Second

	store := repository.NewMemoryStore()
	notifier := new(mocks.MockNotifier)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app, err := NewApp(cfg, logger, store.Showings(), store.Bookings(), notifier)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}

	return &testServer{
		app:      app,
		store:    store,
		notifier: notifier,
		handler:  app.Routes(),
	}
}

func (ts *testServer) seedShowing(t *testing.T, movie, theatre string, available int) domain.Showing {
	t.Helper()

	showing := domain.NewShowing(movie, theatre, available)

	err := ts.store.Showings().Create(t.Context(), showing)
	if err != nil {
		t.Fatalf("failed to seed showing: %v", err)
	}

	return *showing
}

func tokenFor(t *testing.T, loginID string, roles ...string) string {
	t.Helper()

	token, err := auth.IssueToken(testJWTSecret, loginID, roles, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	return token
}

func adminToken(t *testing.T) string {
	return tokenFor(t, "admin", auth.RoleAdmin)
}

func userToken(t *testing.T) string {
	return tokenFor(t, "alice", auth.RoleUser)
}

// executeRequest sends the request through the full router. A string body is sent
// as is, anything else is encoded as JSON.
func (ts *testServer) executeRequest(t *testing.T, method, url string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, r)

	return w
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	err := json.NewDecoder(w.Body).Decode(&v)
	if err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	return v
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	t.Helper()

	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	switch wantStatus {
	case http.StatusUnprocessableEntity:
		validationResp := decodeResponse[api.ValidationErrorResponse](t, w)

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in %+v", wantErrMessage, validationResp.ValidationErrors)
		}

	default:
		errorResp := decodeResponse[api.ErrorResponse](t, w)

		if wantErrMessage != "" && errorResp.Message != wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
