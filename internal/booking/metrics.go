package booking

import (
	"context"
	"errors"

	"github.com/metinatakli/movie-booking-system/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/metinatakli/movie-booking-system/internal/booking"

type metrics struct {
	committed metric.Int64Counter
	rejected  metric.Int64Counter
	retries   metric.Int64Counter
}

func newMetrics() *metrics {
	meter := otel.Meter(instrumentationName)

	committed, _ := meter.Int64Counter("booking.committed",
		metric.WithDescription("Bookings committed"))
	rejected, _ := meter.Int64Counter("booking.rejected",
		metric.WithDescription("Booking requests rejected, by reason"))
	retries, _ := meter.Int64Counter("booking.retries",
		metric.WithDescription("Booking commits retried after a concurrent update"))

	return &metrics{
		committed: committed,
		rejected:  rejected,
		retries:   retries,
	}
}

func (m *metrics) recordRejection(ctx context.Context, err error) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectionReason(err))))
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrShowingNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrSeatAlreadyBooked):
		return "seat_conflict"
	case errors.Is(err, domain.ErrSoldOut):
		return "sold_out"
	case errors.Is(err, domain.ErrEditConflict):
		return "contention"
	case errors.Is(err, domain.ErrNoSeatsRequested):
		return "invalid"
	default:
		return "error"
	}
}
