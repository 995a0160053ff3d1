package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ses-manager/ses-manager/internal/rbac"
)

// RoleSessionKey is the session value holding the caller's role.
const RoleSessionKey = "role"

// Resolver produces the identity of the caller behind r.
type Resolver interface {
	Resolve(r *http.Request) (Context, error)
}

// ResolverFunc adapts an ordinary function to Resolver.
type ResolverFunc func(r *http.Request) (Context, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(r *http.Request) (Context, error) {
	return f(r)
}

// SessionReader resolves identities from cookie sessions stored in Redis by
// the session service. It never creates, renews or deletes sessions.
type SessionReader struct {
	client     redis.Cmdable
	cookieName string
}

type sessionPayload struct {
	Values map[string]string `json:"values"`
	UserID string            `json:"user_id"`
}

// NewSessionReader constructs a SessionReader.
func NewSessionReader(client redis.Cmdable, cookieName string) *SessionReader {
	return &SessionReader{client: client, cookieName: cookieName}
}

// Resolve implements Resolver. A missing cookie, a missing or expired session
// and a session without a user all resolve to Anonymous.
func (sr *SessionReader) Resolve(r *http.Request) (Context, error) {
	cookie, err := r.Cookie(sr.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return Anonymous, nil
		}
		return Anonymous, err
	}
	return sr.Lookup(r.Context(), cookie.Value)
}

// Lookup resolves the identity for a raw session id.
func (sr *SessionReader) Lookup(ctx context.Context, sessionID string) (Context, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Anonymous, nil
	}
	payload, err := sr.client.Get(ctx, redisKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Anonymous, nil
		}
		return Anonymous, fmt.Errorf("identity: load session: %w", err)
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return Anonymous, fmt.Errorf("identity: decode session: %w", err)
	}
	userID := strings.TrimSpace(stored.UserID)
	if userID == "" {
		return Anonymous, nil
	}
	return New(rbac.Role(stored.Values[RoleSessionKey]), userID), nil
}

// CookieName returns the cookie identifier used for sessions.
func (sr *SessionReader) CookieName() string {
	return sr.cookieName
}

func redisKey(id string) string {
	return "session:" + id
}
