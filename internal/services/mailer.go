package services

import (
	"context"

	"askroom/pkg/logger"
)

// Mailer delivers the magic sign-in link to an admin's inbox.
type Mailer interface {
	SendMagicLink(ctx context.Context, email, link string) error
}

// LogMailer writes the link to the application log instead of sending mail.
// Used in development and as the default until an SMTP provider is wired.
type LogMailer struct {
	Log *logger.Logger
}

func (m LogMailer) SendMagicLink(ctx context.Context, email, link string) error {
	if m.Log != nil {
		m.Log.Infof("magic link for %s: %s", email, link)
	}
	return nil
}
