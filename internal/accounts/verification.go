package accounts

import (
	"context"

	"taskfyer/internal/apperr"
	model "taskfyer/internal/domain/tokens"
	"taskfyer/internal/mail"
)

// RequestVerification issues a verify-email token and mails the link. If the
// mail cannot be delivered the token is kept and a delivery error returned.
func (s *Service) RequestVerification(ctx context.Context, userID uint) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperr.ErrAlreadyVerified
	}

	raw, err := s.tokens.Issue(ctx, u.ID, model.PurposeVerifyEmail)
	if err != nil {
		return err
	}

	msg := mail.Message{
		Subject:  "Email Verification - Taskfyer",
		To:       u.Email,
		Name:     u.Name,
		Template: mail.TemplateEmailVerification,
		Link:     s.baseURL + "/verify-email/" + raw,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error(ctx, "verification email failed", "user_id", u.ID, "err", err)
		return apperr.Delivery(err)
	}
	s.log.Info(ctx, "verification email sent", "user_id", u.ID)
	return nil
}

// VerifyEmail marks the token owner verified. The token row is left to expire
// so that replaying the link reports AlreadyVerified instead of
// TokenNotFound; once the user is verified it cannot change anything.
func (s *Service) VerifyEmail(ctx context.Context, raw string) error {
	userID, err := s.tokens.Validate(ctx, raw, model.PurposeVerifyEmail)
	if err != nil {
		return err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperr.ErrAlreadyVerified
	}

	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		return err
	}
	s.log.Info(ctx, "email verified", "user_id", u.ID)
	return nil
}
