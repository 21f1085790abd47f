package users

import (
	"net/http"

	"taskfyer/internal/accounts"
	"taskfyer/internal/apperr"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	accounts *accounts.Service
}

func NewHandler(a *accounts.Service) *Handler {
	return &Handler{accounts: a}
}

// GET /user
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		apperr.Respond(c, apperr.ErrUnauthorized)
		return
	}

	u, err := h.accounts.GetUser(c.Request.Context(), userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PATCH /user
func (h *Handler) UpdateUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		apperr.Respond(c, apperr.ErrUnauthorized)
		return
	}

	var body struct {
		Name  string `json:"name"`
		Bio   string `json:"bio"`
		Photo string `json:"photo"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid request body"))
		return
	}

	u, err := h.accounts.UpdateProfile(c.Request.Context(), userID, accounts.ProfileInput{
		Name:  body.Name,
		Bio:   body.Bio,
		Photo: body.Photo,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
