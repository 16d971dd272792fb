package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/domain"
)

// Checker decides whether a set of seats can be booked for a showing. It has no side effects.
type Checker struct {
	showings     domain.ShowingRepository
	bookings     domain.BookingRepository
	storeTimeout time.Duration
}

func NewChecker(showings domain.ShowingRepository, bookings domain.BookingRepository, storeTimeout time.Duration) *Checker {
	return &Checker{
		showings:     showings,
		bookings:     bookings,
		storeTimeout: storeTimeout,
	}
}

// Check returns the showing snapshot the request was validated against.
//
// The snapshot is read before the bookings so that a conditional write on its
// version fails if another booking commits after the read. Seats are checked in
// request order and the first taken seat is reported; the remaining count is
// only compared once every seat is free.
func (c *Checker) Check(ctx context.Context, movieName, theatreName string, seatNumbers []string) (domain.Showing, error) {
	if len(seatNumbers) == 0 {
		return domain.Showing{}, domain.ErrNoSeatsRequested
	}

	showing, err := c.findShowing(ctx, movieName, theatreName)
	if err != nil {
		return domain.Showing{}, err
	}

	booked, err := c.bookedSeats(ctx, movieName, theatreName)
	if err != nil {
		return domain.Showing{}, err
	}

	requested := make(map[string]struct{}, len(seatNumbers))

	for _, seat := range seatNumbers {
		_, taken := booked[seat]
		_, repeated := requested[seat]

		if taken || repeated {
			return domain.Showing{}, &domain.SeatConflictError{SeatNumber: seat}
		}

		requested[seat] = struct{}{}
	}

	if len(seatNumbers) > showing.TicketsAvailable {
		return domain.Showing{}, domain.ErrSoldOut
	}

	return showing, nil
}

func (c *Checker) findShowing(ctx context.Context, movieName, theatreName string) (domain.Showing, error) {
	ctx, cancel := withStoreTimeout(ctx, c.storeTimeout)
	defer cancel()

	showings, err := c.showings.FindByMovieAndTheatre(ctx, movieName, theatreName)
	if err != nil {
		return domain.Showing{}, fmt.Errorf("failed to load showing: %w", err)
	}

	if len(showings) == 0 {
		return domain.Showing{}, domain.ErrShowingNotFound
	}

	// Bookings reference a showing by name only, so duplicates share one seat
	// namespace and the earliest showing carries the count.
	return showings[0], nil
}

func (c *Checker) bookedSeats(ctx context.Context, movieName, theatreName string) (map[string]struct{}, error) {
	ctx, cancel := withStoreTimeout(ctx, c.storeTimeout)
	defer cancel()

	bookings, err := c.bookings.FindByMovieAndTheatre(ctx, movieName, theatreName)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	booked := make(map[string]struct{})
	for _, b := range bookings {
		for _, seat := range b.SeatNumbers {
			booked[seat] = struct{}{}
		}
	}

	return booked, nil
}

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}
