package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metinatakli/movie-booking-system/internal/domain"
)

// Fanout publishes every message to all of its notifiers and joins their errors.
type Fanout []domain.Notifier

func (f Fanout) Publish(ctx context.Context, topic, message string) error {
	var errs []error

	for _, n := range f {
		err := n.Publish(ctx, topic, message)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// LogNotifier only records the message. It is used when no broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Publish(ctx context.Context, topic, message string) error {
	n.Logger.Info("notification", "topic", topic, "message", message)
	return nil
}
