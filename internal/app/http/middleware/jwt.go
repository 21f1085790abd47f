package middleware

import (
	"strings"

	"taskfyer/internal/apperr"
	"taskfyer/internal/session"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts the session cookie, or an Authorization bearer
// header for non-browser clients, and sets "user_id" and "role".
func AuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(session.CookieName)
		if raw == "" {
			authHeader := c.GetHeader("Authorization")
			raw = strings.TrimPrefix(authHeader, "Bearer ")
			if raw == authHeader {
				raw = ""
			}
		}
		if raw == "" {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}

		claims, err := sessions.Parse(strings.TrimSpace(raw))
		if err != nil {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			apperr.Respond(c, apperr.ErrUnauthorized)
			return
		}

		if value != role {
			apperr.Respond(c, apperr.ErrForbidden)
			return
		}

		c.Next()
	}
}
