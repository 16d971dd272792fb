package domain

import (
	"context"
	"time"
)

type Booking struct {
	ID          string
	LoginID     string
	MovieName   string
	TheatreName string
	NoOfTickets int
	SeatNumbers []string
	CreatedAt   time.Time
}

type BookingRequest struct {
	LoginID     string
	MovieName   string
	TheatreName string
	SeatNumbers []string
}

// BookingRepository persists bookings. Create stores the booking and decrements the
// showing's remaining count in one atomic unit, conditional on showing.Version.
// It returns ErrEditConflict when the showing changed since it was read.
type BookingRepository interface {
	Create(ctx context.Context, booking *Booking, showing *Showing) error
	FindByMovieAndTheatre(ctx context.Context, movieName, theatreName string) ([]Booking, error)
	FindByMovieName(ctx context.Context, movieName string) ([]Booking, error)
}
