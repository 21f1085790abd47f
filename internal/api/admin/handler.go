package admin

import (
	"net/http"
	"strconv"
	"time"

	"taskfyer/internal/accounts"
	"taskfyer/internal/apperr"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	AuthProvider string    `json:"auth_provider"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

type Handler struct {
	accounts *accounts.Service
}

func NewHandler(a *accounts.Service) *Handler {
	return &Handler{accounts: a}
}

// GET /admin/users
func (h *Handler) ListAllUsers(c *gin.Context) {
	list, err := h.accounts.ListUsers(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	out := make([]AdminUser, 0, len(list))
	for _, u := range list {
		out = append(out, AdminUser{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Role:         u.Role,
			AuthProvider: u.AuthProvider,
			IsVerified:   u.IsVerified,
			CreatedAt:    u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /admin/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		apperr.Respond(c, apperr.Validation("Invalid user id"))
		return
	}
	if uint(id) == c.GetUint("user_id") {
		apperr.Respond(c, apperr.Validation("Admins cannot delete themselves"))
		return
	}

	if err := h.accounts.DeleteUser(c.Request.Context(), uint(id)); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
