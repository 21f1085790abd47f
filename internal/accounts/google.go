package accounts

import (
	"context"
	"errors"

	"taskfyer/internal/apperr"
	"taskfyer/internal/domain/users"
)

// GoogleIdentity is the verified subset of a Google ID token.
type GoogleIdentity struct {
	Sub       string
	Email     string
	Name      string
	GivenName string
}

// SignInWithGoogle returns the user bound to id, linking an existing local
// account by email or creating a new verified one.
func (s *Service) SignInWithGoogle(ctx context.Context, id GoogleIdentity) (*users.User, error) {
	if id.Sub == "" || id.Email == "" {
		return nil, apperr.Validation("token missing required claims")
	}

	u, err := s.users.FindByGoogleSub(ctx, id.Sub)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperr.ErrUserNotFound) {
		return nil, err
	}

	u, err = s.users.FindByEmail(ctx, normalizeEmail(id.Email))
	switch {
	case err == nil:
		if u.GoogleSub == nil {
			sub := id.Sub
			u.GoogleSub = &sub
			// Google has verified the address.
			u.IsVerified = true
			if err := s.users.Save(ctx, u); err != nil {
				return nil, err
			}
		}
		return u, nil
	case !errors.Is(err, apperr.ErrUserNotFound):
		return nil, err
	}

	sub := id.Sub
	u = &users.User{
		Name:         firstNonEmpty(id.GivenName, id.Name, id.Email),
		Email:        normalizeEmail(id.Email),
		AuthProvider: users.ProviderGoogle,
		GoogleSub:    &sub,
		Role:         users.RoleUser,
		IsVerified:   true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user created via google", "user_id", u.ID)
	return u, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
