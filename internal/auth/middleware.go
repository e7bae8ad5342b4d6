package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/entities"
)

// Context keys for the acting identity, set by LoadIdentity.
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
)

// Middleware provides the authorization checks for route groups.
type Middleware struct {
	sessions *SessionManager
}

// NewMiddleware creates authorization middleware bound to the session manager.
func NewMiddleware(sessions *SessionManager) *Middleware {
	return &Middleware{sessions: sessions}
}

// LoadIdentity copies the session identity into the Gin context on every
// request, authenticated or not, so handlers and templates have one place
// to read it from.
func (m *Middleware) LoadIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, m.sessions.GetUserID(c.Request))
		c.Set(ContextKeyUsername, m.sessions.GetUsername(c.Request))
		c.Set(ContextKeyRole, m.sessions.GetUserRole(c.Request))
		c.Next()
	}
}

// RequireAuth redirects unauthenticated requests to the login page,
// preserving the target path.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.sessions.GetUserID(c.Request) == 0 {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.Path))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects authenticated non-admins with 403. It assumes
// RequireAuth already ran.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.sessions.GetUserRole(c.Request) != entities.UserRoleAdmin {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// GetUserID extracts the acting user's ID from the Gin context.
// Returns 0 when unauthenticated.
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetUsername extracts the acting user's name from the Gin context.
func GetUsername(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyUsername); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

// GetUserRole extracts the acting user's role from the Gin context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if v, ok := c.Get(ContextKeyRole); ok {
		if role, ok := v.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}
