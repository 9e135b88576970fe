package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoAccessToken        = errors.New("no access token available")
	ErrStaticTokenNoRefresh = errors.New("static token cannot be refreshed; supply a new auth document")
)

// tokenExpiryBuffer treats tokens expiring this soon as already invalid.
const tokenExpiryBuffer = 30 * time.Second

// Token holds a session token and its optional expiry.
type Token struct {
	AccessToken string    `json:"access_token"         yaml:"access_token"`
	TokenType   string    `json:"token_type,omitempty" yaml:"token_type,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// Valid reports whether the token is usable. A zero expiry means the token
// never expires locally; expiry is then only discovered through a 401.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(tokenExpiryBuffer).Before(t.ExpiresAt)
}

// TokenStore is a thread-safe holder for the current token.
type TokenStore struct {
	mutex sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token, or nil.
func (s *TokenStore) Get() *Token {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil
}

// TokenManager supplies the Bearer token for outgoing requests.
type TokenManager interface {
	// GetToken returns a valid access token.
	GetToken(ctx context.Context) (string, error)

	// RefreshToken forces a token renewal where the implementation
	// supports one.
	RefreshToken(ctx context.Context) error

	// SetToken manually sets the access token.
	SetToken(token string, expiresAt time.Time)
}

// StaticTokenManager serves a fixed session token. Salesforce session tokens
// from an auth document carry no refresh material, so renewal always fails
// and an expired session surfaces as a 401 from the server.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager creates a manager around a fixed token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	manager := &StaticTokenManager{
		store: NewTokenStore(),
	}

	if token != "" {
		manager.store.Set(&Token{
			AccessToken: token,
			TokenType:   "Bearer",
		})
	}

	return manager
}

// GetToken returns the stored token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if !token.Valid() {
		return "", ErrNoAccessToken
	}

	return token.AccessToken, nil
}

// RefreshToken always fails; there is nothing to refresh with.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenNoRefresh
}

// SetToken replaces the stored token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
