package notifier

import (
	"context"

	"servicelink/pkg/logger"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

type EmailSender interface {
	Send(ctx context.Context, email Email) error
}

// LogEmailSender records the envelope and delivers nothing. It is the
// default until a real mail transport is configured.
type LogEmailSender struct {
	log *logger.Logger
}

func NewLogEmailSender(log *logger.Logger) *LogEmailSender {
	return &LogEmailSender{log: log}
}

func (s *LogEmailSender) Send(ctx context.Context, email Email) error {
	s.log.Info("Email suppressed",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}
