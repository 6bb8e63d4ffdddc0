package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/openballot/openballot/cliparse"
	"github.com/openballot/openballot/db"
)

// TestJWTSecret signs and verifies bearer tokens in tests.
const TestJWTSecret = "test-jwt-secret"

// TestSessionCookie is the session cookie name used in tests.
const TestSessionCookie = "voter_session"

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema. Each test gets its own database, torn down with the connection.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// A named shared-cache memory DB so the pool sees one database;
	// slashes from subtest names are not URI-safe
	name := strings.NewReplacer("/", "_", "#", "_").Replace(t.Name())
	conn, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3410,
		DatabaseURL:   "file:test?mode=memory",
		DatabaseType:  "sqlite",
		JWTSecret:     TestJWTSecret,
		SessionCookie: TestSessionCookie,
	}
}

// SignTestToken mints a bearer token for userID, signed with TestJWTSecret.
func SignTestToken(t *testing.T, userID string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(TestJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

// CreateTestPoll inserts a poll owned by ownerKey and returns its ID.
// ownerKey may be empty for an ownerless poll.
func CreateTestPoll(t *testing.T, conn *sql.DB, question, ownerKey string) string {
	t.Helper()

	pollID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll (id, question, owner_key, created_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, question, ownerKey, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID
}

// AddTestOption adds an option to a poll and returns the option ID
func AddTestOption(t *testing.T, conn *sql.DB, pollID, text string) string {
	t.Helper()

	optionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO option (id, poll_id, text)
		VALUES ($1, $2, $3)
	`, optionID, pollID, text)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CastTestVote inserts a vote row directly and returns the vote ID.
// voterKey uses the derived form, e.g. "user:alice" or "session:tok".
func CastTestVote(t *testing.T, conn *sql.DB, pollID, optionID, voterKey string) string {
	t.Helper()

	// Same time-ordered ids the ledger assigns
	voteID := uuid.Must(uuid.NewV7()).String()
	var userID, sessionKey interface{}
	if v, ok := strings.CutPrefix(voterKey, "user:"); ok {
		userID = v
	} else if v, ok := strings.CutPrefix(voterKey, "session:"); ok {
		sessionKey = v
	}

	_, err := conn.Exec(`
		INSERT INTO vote (id, option_id, poll_id, voter_key, user_id, session_key, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, voteID, optionID, pollID, voterKey, userID, sessionKey, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return voteID
}

// CountVotes returns the number of votes on an option.
func CountVotes(t *testing.T, conn *sql.DB, optionID string) int {
	t.Helper()

	var n int
	err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE option_id = $1`, optionID).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
