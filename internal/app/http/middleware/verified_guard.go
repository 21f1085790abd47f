package middleware

import (
	"context"

	"taskfyer/internal/apperr"
	"taskfyer/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*users.User, error)
}

// RequireVerified rejects users who have not verified their email.
func RequireVerified(lookup UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := lookup.GetUser(c.Request.Context(), c.GetUint("user_id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if !u.IsVerified {
			apperr.Respond(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}
