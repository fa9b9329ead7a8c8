// Package auth tracks who is calling: cookie sessions for browsers, signed
// bearer tokens for other clients, both sharing one session id so a logout
// ends either.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/yigit/profrate/internal/app/repositories"
	pkgauth "github.com/yigit/profrate/internal/pkg/auth"
	"github.com/yigit/profrate/internal/pkg/logger"
)

const (
	valueUsername  = "username"
	valueSessionID = "jti"
	valueExpiresAt = "exp"
)

// SessionConfig configures the session cookie
type SessionConfig struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// SessionManager establishes, resolves and destroys sessions
type SessionManager struct {
	store      sessions.Store
	cookieName string
	jwt        *pkgauth.JWTService
	tokens     repositories.TokenRepository
	users      repositories.UserRepository
	now        func() time.Time
}

// NewSessionManager creates a SessionManager backed by a signed cookie store
func NewSessionManager(cfg SessionConfig, jwtService *pkgauth.JWTService, tokens repositories.TokenRepository, users repositories.UserRepository) *SessionManager {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(cfg.MaxAge.Seconds()))

	return &SessionManager{
		store:      store,
		cookieName: cfg.CookieName,
		jwt:        jwtService,
		tokens:     tokens,
		users:      users,
		now:        time.Now,
	}
}

// Establish starts a session for username, writes the session cookie and
// returns the equivalent bearer token
func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, username string) (*pkgauth.SessionToken, error) {
	token, err := m.jwt.GenerateToken(username)
	if err != nil {
		return nil, err
	}

	// A stale or tampered cookie still yields a fresh session to fill in
	session, _ := m.store.Get(r, m.cookieName)
	session.Values[valueUsername] = username
	session.Values[valueSessionID] = token.SessionID
	session.Values[valueExpiresAt] = token.ExpiresAt.Unix()
	if err := session.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if purged, err := m.tokens.PurgeExpired(r.Context(), m.now().Unix()); err != nil {
		logger.Warn().Err(err).Msg("Failed to purge expired revoked tokens")
	} else if purged > 0 {
		logger.Debug().Int64("count", purged).Msg("Purged expired revoked tokens")
	}

	return token, nil
}

// Destroy revokes the identity's session id and expires the cookie
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request, identity Identity) error {
	if identity.SessionID != "" {
		if err := m.tokens.Revoke(r.Context(), identity.SessionID, identity.ExpiresAt); err != nil {
			return err
		}
	}

	session, _ := m.store.Get(r, m.cookieName)
	session.Values = make(map[interface{}]interface{})
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Resolve identifies the caller of r. A bearer token takes precedence over
// the cookie. Missing, invalid, expired or revoked credentials resolve to
// Anonymous, as do sessions of deleted or deactivated accounts. Only failing
// lookups are returned as errors.
func (m *SessionManager) Resolve(r *http.Request) (Identity, error) {
	identity, ok := m.fromBearer(r)
	if !ok {
		identity, ok = m.fromCookie(r)
	}
	if !ok {
		return Anonymous, nil
	}

	revoked, err := m.isRevoked(r.Context(), identity.SessionID)
	if err != nil {
		return Anonymous, err
	}
	if revoked {
		return Anonymous, nil
	}

	active, err := m.isActive(r.Context(), identity.Username)
	if err != nil {
		return Anonymous, err
	}
	if !active {
		return Anonymous, nil
	}
	return identity, nil
}

func (m *SessionManager) isActive(ctx context.Context, username string) (bool, error) {
	user, err := m.users.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load session user: %w", err)
	}
	return user.IsActive, nil
}

func (m *SessionManager) isRevoked(ctx context.Context, sessionID string) (bool, error) {
	revoked, err := m.tokens.IsRevoked(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return revoked, nil
}

func (m *SessionManager) fromBearer(r *http.Request) (Identity, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Anonymous, false
	}

	raw, err := pkgauth.ExtractBearerToken(header)
	if err != nil {
		return Anonymous, false
	}

	claims, err := m.jwt.ValidateToken(raw)
	if err != nil {
		if !errors.Is(err, pkgauth.ErrExpiredToken) {
			logger.Debug().Err(err).Msg("Rejected bearer token")
		}
		return Anonymous, false
	}

	return Identity{
		Username:  claims.Username,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, true
}

func (m *SessionManager) fromCookie(r *http.Request) (Identity, bool) {
	session, err := m.store.Get(r, m.cookieName)
	if err != nil || session.IsNew {
		return Anonymous, false
	}

	username, _ := session.Values[valueUsername].(string)
	sessionID, _ := session.Values[valueSessionID].(string)
	expiresAt, _ := session.Values[valueExpiresAt].(int64)
	if username == "" || sessionID == "" || expiresAt <= m.now().Unix() {
		return Anonymous, false
	}

	return Identity{Username: username, SessionID: sessionID, ExpiresAt: expiresAt}, true
}
