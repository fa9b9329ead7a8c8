package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/profrate/internal/app/auth"
	"github.com/yigit/profrate/internal/pkg/apperrors"
)

const identityKey = "identity"

// AuthMiddleware resolves and enforces the caller identity
type AuthMiddleware struct {
	sessions *auth.SessionManager
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(sessions *auth.SessionManager) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// ResolveIdentity stores the caller's identity on the context. Anonymous
// callers pass through.
func (m *AuthMiddleware) ResolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := m.sessions.Resolve(c.Request)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireLogin rejects anonymous callers
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIdentity(c).LoggedIn() {
			HandleAPIError(c, apperrors.ErrLoginRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity resolved for this request
func GetIdentity(c *gin.Context) auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(auth.Identity); ok {
			return identity
		}
	}
	return auth.Anonymous
}
