package domain

import "context"

type Notifier interface {
	Publish(ctx context.Context, topic, message string) error
}
