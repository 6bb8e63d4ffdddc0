package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openballot/openballot/models"
)

func TestWithLogging(t *testing.T) {
	handlerCalled := false
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	wrappedHandler := WithLogging(testHandler)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	wrappedHandler(w, req)

	if !handlerCalled {
		t.Error("Expected handler to be called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}
}

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()
	JSONResponse(w, http.StatusCreated, map[string]string{"message": "hello"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}
	if !strings.Contains(w.Body.String(), `"message":"hello"`) {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("question is required: %w", models.ErrValidation), http.StatusBadRequest},
		{"invalid reference", fmt.Errorf("option x: %w", models.ErrInvalidReference), http.StatusBadRequest},
		{"duplicate vote", fmt.Errorf("poll p: %w", models.ErrDuplicateVote), http.StatusBadRequest},
		{"unauthenticated", fmt.Errorf("create poll: %w", models.ErrUnauthenticated), http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("delete vote: %w", models.ErrForbidden), http.StatusForbidden},
		{"not found", fmt.Errorf("vote v: %w", models.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d. Body: %s", w.Code, tt.wantStatus, w.Body.String())
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if tt.wantStatus == http.StatusInternalServerError {
				// Internal details must not reach the client
				if strings.Contains(resp.Message, "disk on fire") {
					t.Error("Internal error detail leaked to client")
				}
			} else if resp.Message == "" {
				t.Error("Expected a client-facing message")
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/polls", strings.NewReader(`{"question":"Best editor?"}`))

	var body models.CreatePollRequest
	if err := ParseJSONBody(req, &body); err != nil {
		t.Fatalf("ParseJSONBody() error = %v", err)
	}
	if body.Question != "Best editor?" {
		t.Errorf("Question = %q", body.Question)
	}

	bad := httptest.NewRequest("POST", "/polls", strings.NewReader(`{not json`))
	if err := ParseJSONBody(bad, &body); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/votes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if called {
		t.Error("Preflight should not reach the handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
