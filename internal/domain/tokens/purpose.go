package tokens

import (
	"fmt"
	"time"
)

// Purpose partitions the token namespace. Only the two declared values are valid.
type Purpose string

const (
	PurposeVerifyEmail   Purpose = "verify-email"
	PurposeResetPassword Purpose = "reset-password"
)

const (
	VerifyEmailTTL   = 24 * time.Hour
	ResetPasswordTTL = time.Hour
)

// TTL is the lifetime of a token issued for p.
func (p Purpose) TTL() time.Duration {
	switch p {
	case PurposeVerifyEmail:
		return VerifyEmailTTL
	case PurposeResetPassword:
		return ResetPasswordTTL
	default:
		return 0
	}
}

func (p Purpose) Valid() bool {
	return p == PurposeVerifyEmail || p == PurposeResetPassword
}

// ParsePurpose rejects anything that is not a declared purpose.
func ParsePurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown token purpose %q", s)
	}
	return p, nil
}
