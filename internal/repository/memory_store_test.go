package repository

import (
	"context"
	"testing"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/suite"
)

type MemoryStoreTestSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreTestSuite))
}

func (s *MemoryStoreTestSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

func (s *MemoryStoreTestSuite) createShowing(movie, theatre string, available int) domain.Showing {
	showing := domain.NewShowing(movie, theatre, available)
	s.Require().NoError(s.store.Showings().Create(s.ctx, showing))

	return *showing
}

func (s *MemoryStoreTestSuite) TestCreateAssignsIdentity() {
	showing := s.createShowing("Inception", "PVR", 10)

	s.NotEmpty(showing.ID)
	s.Equal(1, showing.Version)
}

func (s *MemoryStoreTestSuite) TestQueries() {
	s.createShowing("Inception", "PVR", 10)
	s.createShowing("interstellar", "INOX", 10)
	s.createShowing("Tenet", "PVR", 10)

	found, err := s.store.Showings().SearchByMovieName(s.ctx, "IN")
	s.Require().NoError(err)
	s.Len(found, 2)

	exact, err := s.store.Showings().FindByMovieName(s.ctx, "inception")
	s.Require().NoError(err)
	s.Empty(exact)

	empty, err := s.store.Showings().FindByMovieAndTheatre(s.ctx, "Dune", "PVR")
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)
}

func (s *MemoryStoreTestSuite) TestBookingCreateDecrementsAndSellsOut() {
	showing := s.createShowing("Inception", "PVR", 2)

	booking := &domain.Booking{ID: "b1", LoginID: "alice", MovieName: "Inception", TheatreName: "PVR", NoOfTickets: 2, SeatNumbers: []string{"A1", "A2"}}
	s.Require().NoError(s.store.Bookings().Create(s.ctx, booking, &showing))

	s.Equal(0, showing.TicketsAvailable)
	s.Equal(domain.StatusSoldOut, showing.Status)
	s.Equal(2, showing.Version)
	s.False(booking.CreatedAt.IsZero())

	stored, err := s.store.Showings().FindByMovieAndTheatre(s.ctx, "Inception", "PVR")
	s.Require().NoError(err)
	s.Equal(showing, stored[0])
}

func (s *MemoryStoreTestSuite) TestBookingCreateConflicts() {
	tests := []struct {
		name  string
		seats []string
		stale bool
	}{
		{name: "stale version", seats: []string{"B1"}, stale: true},
		{name: "more seats than remain", seats: []string{"B1", "B2", "B3", "B4"}},
		{name: "seat already taken", seats: []string{"B1", "A1"}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			showing := s.createShowing("Inception", "PVR", 3)
			before := showing

			first := &domain.Booking{ID: "b1", LoginID: "alice", MovieName: "Inception", TheatreName: "PVR", NoOfTickets: 1, SeatNumbers: []string{"A1"}}
			s.Require().NoError(s.store.Bookings().Create(s.ctx, first, &showing))

			if tt.stale {
				showing = before
			}

			second := &domain.Booking{ID: "b2", LoginID: "bob", MovieName: "Inception", TheatreName: "PVR", NoOfTickets: len(tt.seats), SeatNumbers: tt.seats}
			err := s.store.Bookings().Create(s.ctx, second, &showing)
			s.ErrorIs(err, domain.ErrEditConflict)

			bookings, err := s.store.Bookings().FindByMovieAndTheatre(s.ctx, "Inception", "PVR")
			s.Require().NoError(err)
			s.Len(bookings, 1)
		})
	}
}

func (s *MemoryStoreTestSuite) TestUpdateStatusIsConditional() {
	showing := s.createShowing("Inception", "PVR", 0)
	stale := showing

	showing.Status = domain.StatusBookASAP
	s.Require().NoError(s.store.Showings().UpdateStatus(s.ctx, &showing))
	s.Equal(2, showing.Version)

	stale.Status = domain.StatusSoldOut
	s.ErrorIs(s.store.Showings().UpdateStatus(s.ctx, &stale), domain.ErrEditConflict)
}

func (s *MemoryStoreTestSuite) TestDeleteKeepsBookings() {
	showing := s.createShowing("Inception", "PVR", 5)
	s.createShowing("Inception", "INOX", 5)
	s.createShowing("Tenet", "PVR", 5)

	booking := &domain.Booking{ID: "b1", LoginID: "alice", MovieName: "Inception", TheatreName: "PVR", NoOfTickets: 1, SeatNumbers: []string{"A1"}}
	s.Require().NoError(s.store.Bookings().Create(s.ctx, booking, &showing))

	deleted, err := s.store.Showings().DeleteByMovieName(s.ctx, "Inception")
	s.Require().NoError(err)
	s.EqualValues(2, deleted)

	all, err := s.store.Showings().GetAll(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 1)

	bookings, err := s.store.Bookings().FindByMovieName(s.ctx, "Inception")
	s.Require().NoError(err)
	s.Len(bookings, 1)
}
