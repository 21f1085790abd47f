// Package accounts implements the user-facing account flows: registration and
// login, email verification, password reset and change, Google sign-in
// linking, and admin user management.
package accounts

import (
	"context"
	"errors"
	"strings"

	"taskfyer/internal/apperr"
	"taskfyer/internal/domain/users"
	"taskfyer/internal/logging"
	"taskfyer/internal/mail"
	"taskfyer/internal/tokens"
)

const minPasswordLen = 6

type Service struct {
	users   UserRepository
	tokens  *tokens.Service
	mailer  mail.Mailer
	hasher  PasswordHasher
	log     logging.Logger
	baseURL string
}

type Config struct {
	// BaseURL is the client origin links in emails point at.
	BaseURL string
}

func NewService(repo UserRepository, ts *tokens.Service, mailer mail.Mailer, hasher PasswordHasher, log logging.Logger, cfg Config) *Service {
	return &Service{
		users:   repo,
		tokens:  ts,
		mailer:  mailer,
		hasher:  hasher,
		log:     log.With("component", "accounts"),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*users.User, error) {
	email := normalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("All fields are required")
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperr.ErrUserAlreadyExists
	}
	if !errors.Is(err, apperr.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u := &users.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Password:     &hash,
		AuthProvider: users.ProviderLocal,
		Role:         users.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*users.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("All fields are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !u.HasPassword() || !s.hasher.Compare(*u.Password, password) {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*users.User, error) {
	return s.users.FindByID(ctx, id)
}

type ProfileInput struct {
	Name  string
	Bio   string
	Photo string
}

// UpdateProfile overwrites only the non-empty fields of in.
func (s *Service) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*users.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Bio != "" {
		u.Bio = in.Bio
	}
	if in.Photo != "" {
		u.Photo = in.Photo
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword requires proof of the current password. It is independent of
// the token-based reset flow.
func (s *Service) ChangePassword(ctx context.Context, id uint, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("All fields are required")
	}
	if err := checkPassword(next); err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.HasPassword() || !s.hasher.Compare(*u.Password, current) {
		return apperr.ErrInvalidCredentials
	}
	return s.setPassword(ctx, id, next)
}

func (s *Service) setPassword(ctx context.Context, id uint, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.users.SetPassword(ctx, id, hash)
}

func checkPassword(p string) error {
	if len(p) < minPasswordLen {
		return apperr.Validation("Password must be at least 6 characters")
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
