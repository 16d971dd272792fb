package app

import (
	"testing"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepStatusesRepairsLabels(t *testing.T) {
	ts := newTestServer(t)
	ts.app.config.Booking.StatusSweepInterval = time.Minute

	stale := &domain.Showing{MovieName: "Inception", TheatreName: "PVR", TicketsAvailable: 0, Status: domain.StatusBookASAP}
	require.NoError(t, ts.store.Showings().Create(t.Context(), stale))
	ts.seedShowing(t, "Tenet", "PVR", 3)

	ts.app.sweepStatuses()

	showings, err := ts.store.Showings().GetAll(t.Context())
	require.NoError(t, err)

	for _, s := range showings {
		assert.True(t, s.HasConsistentStatus(), "showing %s/%s has status %q", s.MovieName, s.TheatreName, s.Status)
	}
}

func TestStartStatusSweep(t *testing.T) {
	t.Run("disabled without an interval", func(t *testing.T) {
		ts := newTestServer(t)

		s, err := ts.app.startStatusSweep()
		require.NoError(t, err)
		assert.Nil(t, s)
	})

	t.Run("repairs showings in the background", func(t *testing.T) {
		ts := newTestServer(t)
		ts.app.config.Booking.StatusSweepInterval = 20 * time.Millisecond

		stale := &domain.Showing{MovieName: "Inception", TheatreName: "PVR", TicketsAvailable: 0, Status: domain.StatusBookASAP}
		require.NoError(t, ts.store.Showings().Create(t.Context(), stale))

		s, err := ts.app.startStatusSweep()
		require.NoError(t, err)
		require.NotNil(t, s)
		defer s.Shutdown()

		assert.Eventually(t, func() bool {
			showings, err := ts.store.Showings().FindByMovieName(t.Context(), "Inception")
			return err == nil && len(showings) == 1 && showings[0].Status == domain.StatusSoldOut
		}, 2*time.Second, 10*time.Millisecond)
	})
}
