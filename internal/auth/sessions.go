package auth

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL bounds how long a login stays valid.
const DefaultSessionTTL = 8 * time.Hour

// Session is an issued bearer token.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Sessions issues and validates bearer tokens in memory.
type Sessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]time.Time
}

// NewSessions returns a session table with the given TTL.
func NewSessions(ttl time.Duration, now func() time.Time) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Sessions{ttl: ttl, now: now, tokens: make(map[string]time.Time)}
}

// Issue creates a new session and purges expired ones.
func (s *Sessions) Issue() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for token, exp := range s.tokens {
		if !now.Before(exp) {
			delete(s.tokens, token)
		}
	}
	sess := Session{Token: uuid.NewString(), ExpiresAt: now.Add(s.ttl).UTC()}
	s.tokens[sess.Token] = sess.ExpiresAt
	return sess
}

// Validate returns ErrUnauthorized for unknown or expired tokens.
func (s *Sessions) Validate(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.tokens[token]
	if !ok {
		return ErrUnauthorized
	}
	if !s.now().Before(exp) {
		delete(s.tokens, token)
		return ErrUnauthorized
	}
	return nil
}

// Revoke forgets token.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
