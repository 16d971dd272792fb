package mocks

import (
	"context"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockNotifier struct {
	mock.Mock
	domain.Notifier
}

func (m *MockNotifier) Publish(ctx context.Context, topic, message string) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}
