// Package notify implements the account coordinator's notifier port.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-event-hub/pkg/mailer"
)

// Log only writes the email to the log. It is the default when no delivery
// backend is configured.
type Log struct {
	Logger *logrus.Logger
}

func (n Log) SendEmail(_ context.Context, to, subject, _ string) error {
	if n.Logger != nil {
		n.Logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email not sent: notifier disabled")
	}
	return nil
}

// Publisher puts a JSON message on a queue. *helpers.RabbitPublisher satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Rabbit queues a mailer.EmailJob for the email worker.
type Rabbit struct {
	Publisher Publisher
}

func (n Rabbit) SendEmail(ctx context.Context, to, subject, body string) error {
	return n.Publisher.PublishJSON(ctx, mailer.EmailJob{To: to, Subject: subject, Text: body})
}

// Mailgun sends synchronously without a queue.
type Mailgun struct {
	Sender mailer.Sender
}

func (n Mailgun) SendEmail(ctx context.Context, to, subject, body string) error {
	return mailer.Deliver(ctx, n.Sender, mailer.EmailJob{To: to, Subject: subject, Text: body})
}
