package mocks

import (
	"context"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepo struct {
	mock.Mock
	domain.BookingRepository
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking, showing *domain.Showing) error {
	args := m.Called(ctx, booking, showing)
	return args.Error(0)
}

func (m *MockBookingRepo) FindByMovieAndTheatre(
	ctx context.Context,
	movieName, theatreName string) ([]domain.Booking, error) {

	args := m.Called(ctx, movieName, theatreName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepo) FindByMovieName(ctx context.Context, movieName string) ([]domain.Booking, error) {
	args := m.Called(ctx, movieName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
