package domain

import (
	"errors"
	"fmt"
)

var (
	ErrShowingNotFound   = errors.New("movie not found")
	ErrEditConflict      = errors.New("edit conflict")
	ErrSeatAlreadyBooked = errors.New("seat is already booked")
	ErrSoldOut           = errors.New("all tickets sold out")
	ErrNoSeatsRequested  = errors.New("at least one seat number is required")
)

// SeatConflictError reports the first requested seat that is already taken.
type SeatConflictError struct {
	SeatNumber string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat number %s is already booked", e.SeatNumber)
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatAlreadyBooked
}
