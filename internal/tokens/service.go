// Package tokens issues and validates the single-use secrets behind email
// verification and password reset links.
package tokens

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"taskfyer/internal/apperr"
	model "taskfyer/internal/domain/tokens"
)

const secretBytes = 64

type Service struct {
	store  Store
	now    func() time.Time
	random io.Reader
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandom overrides crypto/rand as the secret source.
func WithRandom(r io.Reader) Option {
	return func(s *Service) { s.random = r }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now, random: rand.Reader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue creates a fresh secret for (userID, purpose), replacing any previous
// one. The returned raw secret exists nowhere else.
func (s *Service) Issue(ctx context.Context, userID uint, purpose model.Purpose) (string, error) {
	if !purpose.Valid() {
		return "", apperr.Internal(fmt.Errorf("issue token: invalid purpose %q", purpose))
	}

	buf := make([]byte, secretBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", apperr.Internal(fmt.Errorf("generate secret: %w", err))
	}
	raw := hex.EncodeToString(buf)

	now := s.now()
	t := &model.Token{
		UserID:     userID,
		Purpose:    purpose,
		SecretHash: s.hash(raw),
		CreatedAt:  now,
		ExpiresAt:  now.Add(purpose.TTL()),
	}
	if err := s.store.Upsert(ctx, t); err != nil {
		return "", apperr.Internal(err)
	}
	return raw, nil
}

// Validate resolves raw to its owner. Unknown, tampered and expired secrets
// all fail with the same TokenNotFound error. The token is not consumed.
func (s *Service) Validate(ctx context.Context, raw string, purpose model.Purpose) (uint, error) {
	if raw == "" || !purpose.Valid() {
		return 0, apperr.ErrTokenNotFound
	}

	t, err := s.store.FindByHash(ctx, s.hash(raw), purpose)
	if errors.Is(err, ErrNotFound) {
		return 0, apperr.ErrTokenNotFound
	}
	if err != nil {
		return 0, apperr.Internal(err)
	}
	if !t.LiveAt(s.now()) {
		return 0, apperr.ErrTokenNotFound
	}
	return t.UserID, nil
}

// Consume deletes the token behind raw. Consuming twice is a no-op.
func (s *Service) Consume(ctx context.Context, raw string, purpose model.Purpose) error {
	if err := s.store.DeleteByHash(ctx, s.hash(raw), purpose); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Revoke drops every token a user holds.
func (s *Service) Revoke(ctx context.Context, userID uint) error {
	if err := s.store.DeleteForUser(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// hash is the only place secrets are digested.
func (s *Service) hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
