package identity

import (
	"context"

	account "github.com/goliatone/go-account"
)

// Message is an outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
	// Link is the action URL embedded in Body.
	Link string
}

// Mailer delivers emails on behalf of the provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailerFunc adapts a function to the Mailer interface.
type MailerFunc func(ctx context.Context, msg Message) error

func (f MailerFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// LogMailer writes emails to the logger instead of sending them.
type LogMailer struct {
	Logger account.Logger
}

func (m LogMailer) Send(_ context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = account.DefaultLogger()
	}
	logger.Info("mail", "to", msg.To, "subject", msg.Subject, "link", msg.Link)
	return nil
}
