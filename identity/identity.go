package identity

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openballot/openballot/models"
)

const (
	userPrefix    = "user:"
	sessionPrefix = "session:"
)

// Identity is the stable value a vote is attributed to: an authenticated
// user id or an anonymous session key, exactly one populated.
type Identity struct {
	UserID     string
	SessionKey string
}

// Authenticated reports whether the identity belongs to a logged-in user.
func (id Identity) Authenticated() bool {
	return id.UserID != ""
}

// Key returns the derived identity column stored alongside each vote and
// poll owner. The prefix keeps user ids and session keys from ever
// colliding.
func (id Identity) Key() string {
	if id.UserID != "" {
		return userPrefix + id.UserID
	}
	return sessionPrefix + id.SessionKey
}

// Resolver maps an inbound request to a voter identity.
type Resolver struct {
	jwtSecret  []byte
	cookieName string
}

func NewResolver(jwtSecret, cookieName string) *Resolver {
	return &Resolver{jwtSecret: []byte(jwtSecret), cookieName: cookieName}
}

// Resolve returns the caller's identity. A valid bearer token wins; else the
// session cookie is used; else a fresh session key is minted and attached to
// the response so the client's next request carries it.
//
// A bearer token that is present but invalid fails with ErrUnauthenticated
// rather than degrading to an anonymous session: silently recording an
// anonymous vote for a caller who believes they are logged in would also let
// an expired credential dodge the duplicate-vote rule.
func (rs *Resolver) Resolve(w http.ResponseWriter, r *http.Request) (Identity, error) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return Identity{}, fmt.Errorf("malformed Authorization header: %w", models.ErrUnauthenticated)
		}
		userID, err := rs.verifyToken(raw)
		if err != nil {
			return Identity{}, err
		}
		return Identity{UserID: userID}, nil
	}

	if c, err := r.Cookie(rs.cookieName); err == nil && c.Value != "" {
		return Identity{SessionKey: c.Value}, nil
	}

	key, err := GenerateSessionKey()
	if err != nil {
		return Identity{}, fmt.Errorf("failed to mint session key: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     rs.cookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return Identity{SessionKey: key}, nil
}

// verifyToken checks an HS256 JWT and extracts the user id from its "id"
// claim.
func (rs *Resolver) verifyToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return rs.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("invalid bearer token: %w", models.ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected token claims: %w", models.ErrUnauthenticated)
	}
	userID, _ := claims["id"].(string)
	if userID == "" {
		return "", fmt.Errorf("token missing id claim: %w", models.ErrUnauthenticated)
	}
	return userID, nil
}

// GenerateSessionKey creates a random opaque key for an anonymous voter.
func GenerateSessionKey() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session key: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}
