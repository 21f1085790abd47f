// Package mail delivers account emails. Delivery can fail independently of
// whatever state the caller already committed.
package mail

import (
	"context"
	"fmt"
)

// Template names understood by Render.
const (
	TemplateEmailVerification = "emailVerification"
	TemplateForgotPassword    = "forgotPassword"
)

type Message struct {
	Subject  string
	To       string
	Name     string
	Template string
	Link     string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Render produces the plain-text body for msg.
func Render(msg Message) (string, error) {
	switch msg.Template {
	case TemplateEmailVerification:
		return fmt.Sprintf("Hello %s,\n\nPlease verify your email address by opening the link below. "+
			"The link is valid for 24 hours.\n\n%s\n\nIf you did not create an account, ignore this email.", msg.Name, msg.Link), nil
	case TemplateForgotPassword:
		return fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password. "+
			"The link is valid for 1 hour.\n\n%s\n\nIf you did not request a reset, ignore this email.", msg.Name, msg.Link), nil
	default:
		return "", fmt.Errorf("unknown email template %q", msg.Template)
	}
}
