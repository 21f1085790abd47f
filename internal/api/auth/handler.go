package auth

import (
	"net/http"

	"taskfyer/internal/accounts"
	"taskfyer/internal/apperr"
	"taskfyer/internal/domain/users"
	"taskfyer/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	accounts *accounts.Service
	sessions *session.Manager
	// Secure marks the session cookie Secure + SameSite=None (production).
	Secure bool
	google *GoogleSignIn
}

func NewHandler(a *accounts.Service, s *session.Manager, secure bool) *Handler {
	return &Handler{accounts: a, sessions: s, Secure: secure}
}

// WithGoogle enables the Google sign-in routes.
func (h *Handler) WithGoogle(g *GoogleSignIn) *Handler {
	h.google = g
	return h
}

func mustUserID(c *gin.Context) (uint, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		apperr.Respond(c, apperr.ErrUnauthorized)
		return 0, false
	}
	return userID, true
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	sameSite := http.SameSiteLaxMode
	if h.Secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(session.CookieName, token, int(h.sessions.TTL().Seconds()), "/", "", h.Secure, true)
}

func (h *Handler) startSession(c *gin.Context, status int, u *users.User) {
	token, err := h.sessions.Issue(u.ID, u.Role)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	h.setSessionCookie(c, token)
	c.JSON(status, gin.H{"user": u, "token": token})
}

// POST /register
func (h *Handler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid request body"))
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), accounts.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, u)
}

// POST /login
func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid request body"))
		return
	}

	u, err := h.accounts.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	h.startSession(c, http.StatusOK, u)
}

// GET /logout
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie(session.CookieName, "", -1, "/", "", h.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "User logged out"})
}

// GET /login-status
func (h *Handler) LoginStatus(c *gin.Context) {
	raw, err := c.Cookie(session.CookieName)
	if err != nil || raw == "" {
		c.JSON(http.StatusOK, false)
		return
	}
	_, err = h.sessions.Parse(raw)
	c.JSON(http.StatusOK, err == nil)
}

// POST /verify-email
func (h *Handler) RequestVerification(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.accounts.RequestVerification(c.Request.Context(), userID); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent"})
}

// GET /verify-email/:token
func (h *Handler) VerifyEmail(c *gin.Context) {
	if err := h.accounts.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User verified"})
}

// POST /forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.Validation("Email is required"))
		return
	}
	if err := h.accounts.ForgotPassword(c.Request.Context(), body.Email); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent"})
}

// POST /reset-password/:token
func (h *Handler) ResetPassword(c *gin.Context) {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.Validation("Password is required"))
		return
	}
	if err := h.accounts.ResetPassword(c.Request.Context(), c.Param("token"), body.Password); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// POST /change-password
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Respond(c, apperr.Validation("Invalid input"))
		return
	}
	if err := h.accounts.ChangePassword(c.Request.Context(), userID, body.CurrentPassword, body.NewPassword); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
