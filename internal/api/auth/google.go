package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"taskfyer/internal/accounts"
	"taskfyer/internal/apperr"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer    = "https://accounts.google.com"
	stateCookieName = "oauth_state"
)

type GoogleConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	FrontendRedirect string
}

type GoogleSignIn struct {
	cfg   GoogleConfig
	oauth *oauth2.Config
}

func NewGoogleSignIn(cfg GoogleConfig) *GoogleSignIn {
	return &GoogleSignIn{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "Google sign-in is not configured"})
		return
	}
	state, err := randomState()
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}

	// 5 minutes, HttpOnly
	c.SetCookie(stateCookieName, state, 300, "/", "", h.Secure, true)
	c.Redirect(http.StatusFound, h.google.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "NotFound", "message": "Google sign-in is not configured"})
		return
	}
	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		apperr.Respond(c, apperr.Validation("missing code/state"))
		return
	}
	cookieState, err := c.Cookie(stateCookieName)
	if err != nil || cookieState != state {
		apperr.Respond(c, apperr.Validation("invalid oauth state"))
		return
	}

	ctx := c.Request.Context()
	tok, err := h.google.oauth.Exchange(ctx, code)
	if err != nil {
		apperr.Respond(c, apperr.ErrUnauthorized.Wrap(err))
		return
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		apperr.Respond(c, apperr.ErrUnauthorized.Wrap(errors.New("missing id_token")))
		return
	}

	id, err := h.google.verify(ctx, rawIDToken)
	if err != nil {
		apperr.Respond(c, apperr.ErrUnauthorized.Wrap(err))
		return
	}

	u, err := h.accounts.SignInWithGoogle(ctx, *id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	token, err := h.sessions.Issue(u.ID, u.Role)
	if err != nil {
		apperr.Respond(c, apperr.Internal(err))
		return
	}
	h.setSessionCookie(c, token)

	if h.google.cfg.FrontendRedirect == "" {
		c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
		return
	}
	c.Redirect(http.StatusFound, h.google.cfg.FrontendRedirect)
}

type googleIDClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

// verify checks the ID token signature against Google's published keys.
func (g *GoogleSignIn) verify(ctx context.Context, rawIDToken string) (*accounts.GoogleIdentity, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, errors.New("failed to init google oidc provider")
	}
	idToken, err := provider.Verifier(&oidc.Config{ClientID: g.cfg.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.New("invalid id_token")
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to decode token claims")
	}
	if !claims.EmailVerified {
		return nil, errors.New("google email not verified")
	}
	return &accounts.GoogleIdentity{
		Sub:       claims.Sub,
		Email:     claims.Email,
		Name:      claims.Name,
		GivenName: claims.GivenName,
	}, nil
}
