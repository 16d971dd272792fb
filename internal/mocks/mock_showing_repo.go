package mocks

import (
	"context"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShowingRepo struct {
	mock.Mock
	domain.ShowingRepository
}

func (m *MockShowingRepo) Create(ctx context.Context, showing *domain.Showing) error {
	args := m.Called(ctx, showing)
	return args.Error(0)
}

func (m *MockShowingRepo) GetAll(ctx context.Context) ([]domain.Showing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Showing), args.Error(1)
}

func (m *MockShowingRepo) FindByMovieName(ctx context.Context, movieName string) ([]domain.Showing, error) {
	args := m.Called(ctx, movieName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Showing), args.Error(1)
}

func (m *MockShowingRepo) SearchByMovieName(ctx context.Context, prefix string) ([]domain.Showing, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Showing), args.Error(1)
}

func (m *MockShowingRepo) FindByMovieAndTheatre(
	ctx context.Context,
	movieName, theatreName string) ([]domain.Showing, error) {

	args := m.Called(ctx, movieName, theatreName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Showing), args.Error(1)
}

func (m *MockShowingRepo) UpdateStatus(ctx context.Context, showing *domain.Showing) error {
	args := m.Called(ctx, showing)
	return args.Error(0)
}

func (m *MockShowingRepo) DeleteByMovieName(ctx context.Context, movieName string) (int64, error) {
	args := m.Called(ctx, movieName)
	return args.Get(0).(int64), args.Error(1)
}
