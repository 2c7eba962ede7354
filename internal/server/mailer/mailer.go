// Package mailer handles outbound transactional email. Production delivery
// goes through Postmark; development writes messages to a local directory.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidParams     = errors.New("invalid email params")
	ErrFailedToSendEmail = errors.New("failed to send email")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// EmailSender delivers a single email. Implementations must be safe for
// concurrent use.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string
	Subject  string
	BodyHTML string
	Tag      string
}

// Validate checks that the parameters form a deliverable message.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" || !emailRegex.MatchString(p.SendTo) {
		return fmt.Errorf("%w: recipient address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidParams)
	}
	return nil
}

// NewPasswordResetEmail composes the reset message sent to a user who
// requested a password reset. resetURL already carries the signed token.
func NewPasswordResetEmail(sendTo, resetURL string) SendEmailParams {
	body := fmt.Sprintf(
		`<p>You requested a password reset for your taskmate account.</p>
<p><a href="%s">Reset your password</a></p>
<p>If you did not request this, you can safely ignore this message.</p>`,
		resetURL,
	)

	return SendEmailParams{
		SendTo:   sendTo,
		Subject:  "Reset your password",
		BodyHTML: body,
		Tag:      "password-reset",
	}
}
