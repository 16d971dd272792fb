package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

// MemoryStore keeps showings and bookings in process memory. It serves both
// repository interfaces and applies the same conditional-write rules as the
// durable stores, which makes it usable for local runs and concurrency tests.
type MemoryStore struct {
	mu       sync.Mutex
	showings []domain.Showing
	bookings []domain.Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Showings returns a ShowingRepository view of the store.
func (m *MemoryStore) Showings() *MemoryShowingRepository {
	return &MemoryShowingRepository{store: m}
}

// Bookings returns a BookingRepository view of the store.
func (m *MemoryStore) Bookings() *MemoryBookingRepository {
	return &MemoryBookingRepository{store: m}
}

type MemoryShowingRepository struct {
	store *MemoryStore
}

func (r *MemoryShowingRepository) Create(ctx context.Context, showing *domain.Showing) error {
	m := r.store

	m.mu.Lock()
	defer m.mu.Unlock()

	if showing.ID == "" {
		showing.ID = uuid.NewString()
	}
	showing.Version = 1

	m.showings = append(m.showings, *showing)

	return nil
}

func (r *MemoryShowingRepository) GetAll(ctx context.Context) ([]domain.Showing, error) {
	return r.filter(func(domain.Showing) bool { return true }), nil
}

func (r *MemoryShowingRepository) FindByMovieName(ctx context.Context, movieName string) ([]domain.Showing, error) {
	return r.filter(func(s domain.Showing) bool {
		return s.MovieName == movieName
	}), nil
}

func (r *MemoryShowingRepository) SearchByMovieName(ctx context.Context, prefix string) ([]domain.Showing, error) {
	prefix = strings.ToLower(prefix)

	return r.filter(func(s domain.Showing) bool {
		return strings.HasPrefix(strings.ToLower(s.MovieName), prefix)
	}), nil
}

func (r *MemoryShowingRepository) FindByMovieAndTheatre(
	ctx context.Context,
	movieName, theatreName string) ([]domain.Showing, error) {

	return r.filter(func(s domain.Showing) bool {
		return s.MovieName == movieName && s.TheatreName == theatreName
	}), nil
}

func (r *MemoryShowingRepository) UpdateStatus(ctx context.Context, showing *domain.Showing) error {
	m := r.store

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(showing.ID)
	if i < 0 || m.showings[i].Version != showing.Version {
		return domain.ErrEditConflict
	}

	m.showings[i].Status = showing.Status
	m.showings[i].Version++

	showing.Version = m.showings[i].Version

	return nil
}

func (r *MemoryShowingRepository) DeleteByMovieName(ctx context.Context, movieName string) (int64, error) {
	m := r.store

	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.showings)
	m.showings = slices.DeleteFunc(m.showings, func(s domain.Showing) bool {
		return s.MovieName == movieName
	})

	return int64(before - len(m.showings)), nil
}

func (r *MemoryShowingRepository) filter(keep func(domain.Showing) bool) []domain.Showing {
	m := r.store

	m.mu.Lock()
	defer m.mu.Unlock()

	showings := make([]domain.Showing, 0)
	for _, s := range m.showings {
		if keep(s) {
			showings = append(showings, s)
		}
	}

	return showings
}

type MemoryBookingRepository struct {
	store *MemoryStore
}

func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking, showing *domain.Showing) error {
	m := r.store

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(showing.ID)
	if i < 0 || m.showings[i].Version != showing.Version {
		return domain.ErrEditConflict
	}

	stored := m.showings[i]

	remaining := stored.TicketsAvailable - len(booking.SeatNumbers)
	if remaining < 0 {
		return domain.ErrEditConflict
	}

	for _, b := range m.bookings {
		if b.MovieName != stored.MovieName || b.TheatreName != stored.TheatreName {
			continue
		}

		for _, seat := range booking.SeatNumbers {
			if slices.Contains(b.SeatNumbers, seat) {
				return domain.ErrEditConflict
			}
		}
	}

	stored.TicketsAvailable = remaining
	if remaining == 0 {
		stored.Status = domain.StatusSoldOut
	}
	stored.Version++

	m.showings[i] = stored

	booking.CreatedAt = time.Now().UTC()

	saved := *booking
	saved.SeatNumbers = slices.Clone(booking.SeatNumbers)
	m.bookings = append(m.bookings, saved)

	*showing = stored

	return nil
}

func (r *MemoryBookingRepository) FindByMovieAndTheatre(
	ctx context.Context,
	movieName, theatreName string) ([]domain.Booking, error) {

	return r.filter(func(b domain.Booking) bool {
		return b.MovieName == movieName && b.TheatreName == theatreName
	}), nil
}

func (r *MemoryBookingRepository) FindByMovieName(ctx context.Context, movieName string) ([]domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool {
		return b.MovieName == movieName
	}), nil
}

func (r *MemoryBookingRepository) filter(keep func(domain.Booking) bool) []domain.Booking {
	m := r.store

	m.mu.Lock()
	defer m.mu.Unlock()

	bookings := make([]domain.Booking, 0)
	for _, b := range m.bookings {
		if keep(b) {
			b.SeatNumbers = slices.Clone(b.SeatNumbers)
			bookings = append(bookings, b)
		}
	}

	return bookings
}

func (m *MemoryStore) indexOf(id string) int {
	return slices.IndexFunc(m.showings, func(s domain.Showing) bool {
		return s.ID == id
	})
}
