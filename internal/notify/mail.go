package notify

import (
	"context"

	"github.com/metinatakli/movie-booking-system/internal/mailer"
)

const notificationTemplate = "notification.tmpl"

// MailPublisher forwards notifications to an operator mailbox.
type MailPublisher struct {
	mailer    mailer.Mailer
	recipient string
}

func NewMailPublisher(m mailer.Mailer, recipient string) *MailPublisher {
	return &MailPublisher{
		mailer:    m,
		recipient: recipient,
	}
}

func (p *MailPublisher) Publish(ctx context.Context, topic, message string) error {
	data := map[string]any{
		"topic":   topic,
		"message": message,
	}

	return p.mailer.Send(ctx, p.recipient, notificationTemplate, data)
}
