package domain

import (
	"context"
	"strings"
)

type ShowingStatus string

const (
	StatusBookASAP ShowingStatus = "BOOK ASAP"
	StatusSoldOut  ShowingStatus = "SOLD OUT"
)

// StatusFor returns the label a showing must carry for the given remaining count.
func StatusFor(ticketsAvailable int) ShowingStatus {
	if ticketsAvailable <= 0 {
		return StatusSoldOut
	}

	return StatusBookASAP
}

// Showing is one movie playing at one theatre together with its remaining ticket count.
// Version is bumped by every stored mutation and guards conditional writes.
type Showing struct {
	ID               string
	MovieName        string
	TheatreName      string
	TicketsAvailable int
	Status           ShowingStatus
	Version          int
}

func NewShowing(movieName, theatreName string, ticketsAvailable int) *Showing {
	return &Showing{
		MovieName:        strings.TrimSpace(movieName),
		TheatreName:      strings.TrimSpace(theatreName),
		TicketsAvailable: ticketsAvailable,
		Status:           StatusFor(ticketsAvailable),
	}
}

// HasConsistentStatus reports whether the label matches the remaining count.
func (s Showing) HasConsistentStatus() bool {
	return s.Status == StatusFor(s.TicketsAvailable)
}

type ShowingRepository interface {
	Create(ctx context.Context, showing *Showing) error
	GetAll(ctx context.Context) ([]Showing, error)
	FindByMovieName(ctx context.Context, movieName string) ([]Showing, error)
	SearchByMovieName(ctx context.Context, prefix string) ([]Showing, error)
	FindByMovieAndTheatre(ctx context.Context, movieName, theatreName string) ([]Showing, error)
	UpdateStatus(ctx context.Context, showing *Showing) error
	DeleteByMovieName(ctx context.Context, movieName string) (int64, error)
}
