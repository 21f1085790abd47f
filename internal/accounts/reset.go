package accounts

import (
	"context"

	"taskfyer/internal/apperr"
	model "taskfyer/internal/domain/tokens"
	"taskfyer/internal/mail"
)

func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperr.Validation("Email is required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw, err := s.tokens.Issue(ctx, u.ID, model.PurposeResetPassword)
	if err != nil {
		return err
	}

	msg := mail.Message{
		Subject:  "Password Reset - Taskfyer",
		To:       u.Email,
		Name:     u.Name,
		Template: mail.TemplateForgotPassword,
		Link:     s.baseURL + "/reset-password/" + raw,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error(ctx, "password reset email failed", "user_id", u.ID, "err", err)
		return apperr.Delivery(err)
	}
	s.log.Info(ctx, "password reset email sent", "user_id", u.ID)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, raw, password string) error {
	if password == "" {
		return apperr.Validation("Password is required")
	}
	if err := checkPassword(password); err != nil {
		return err
	}

	userID, err := s.tokens.Validate(ctx, raw, model.PurposeResetPassword)
	if err != nil {
		return err
	}
	if err := s.setPassword(ctx, userID, password); err != nil {
		return err
	}
	if err := s.tokens.Consume(ctx, raw, model.PurposeResetPassword); err != nil {
		return err
	}
	s.log.Info(ctx, "password reset", "user_id", userID)
	return nil
}
