package accounts

import (
	"context"

	"taskfyer/internal/domain/users"
)

func (s *Service) ListUsers(ctx context.Context) ([]users.User, error) {
	return s.users.List(ctx)
}

// DeleteUser removes the user, their tasks and any outstanding tokens.
func (s *Service) DeleteUser(ctx context.Context, id uint) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "user_id", id)
	return nil
}
