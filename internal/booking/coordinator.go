package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultMaxAttempts  = 5
	DefaultStoreTimeout = 3 * time.Second
)

type Config struct {
	MaxAttempts  int
	StoreTimeout time.Duration
	Topic        string
}

// Coordinator books seats: validate, commit with a conditional write, then notify.
// A commit that loses a race against another booking is re-validated against
// fresh state and retried with jittered exponential backoff.
type Coordinator struct {
	checker  *Checker
	bookings domain.BookingRepository
	notifier domain.Notifier
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *metrics

	maxAttempts  uint
	storeTimeout time.Duration
	topic        string

	newBackOff func() backoff.BackOff
}

func NewCoordinator(
	showings domain.ShowingRepository,
	bookings domain.BookingRepository,
	notifier domain.Notifier,
	logger *slog.Logger,
	cfg Config) *Coordinator {

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}

	return &Coordinator{
		checker:      NewChecker(showings, bookings, cfg.StoreTimeout),
		bookings:     bookings,
		notifier:     notifier,
		logger:       logger,
		tracer:       otel.Tracer(instrumentationName),
		metrics:      newMetrics(),
		maxAttempts:  uint(cfg.MaxAttempts),
		storeTimeout: cfg.StoreTimeout,
		topic:        cfg.Topic,
		newBackOff:   newCommitBackOff,
	}
}

func newCommitBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond

	return b
}

func (c *Coordinator) Book(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	ctx, span := c.tracer.Start(ctx, "booking.Book", trace.WithAttributes(
		attribute.String("movie.name", req.MovieName),
		attribute.String("theatre.name", req.TheatreName),
		attribute.Int("seats.requested", len(req.SeatNumbers)),
	))
	defer span.End()

	booking, err := c.book(ctx, req)
	if err != nil {
		c.metrics.recordRejection(ctx, err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	c.metrics.committed.Add(ctx, 1)
	span.SetAttributes(attribute.String("booking.id", booking.ID))

	c.notify(ctx, BookedMessage(booking))

	return booking, nil
}

func (c *Coordinator) book(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	attempt := 0

	operation := func() (*domain.Booking, error) {
		attempt++
		if attempt > 1 {
			c.metrics.retries.Add(ctx, 1)
		}

		showing, err := c.checker.Check(ctx, req.MovieName, req.TheatreName, req.SeatNumbers)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		booking := newBooking(req)

		err = c.commit(ctx, booking, &showing)
		if err != nil {
			if errors.Is(err, domain.ErrEditConflict) {
				c.logger.Debug("booking commit lost a concurrent update",
					"movie_name", req.MovieName,
					"theatre_name", req.TheatreName,
					"attempt", attempt)

				return nil, err
			}

			return nil, backoff.Permanent(err)
		}

		return booking, nil
	}

	booking, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxAttempts),
	)
	if err == nil {
		return booking, nil
	}

	if !errors.Is(err, domain.ErrEditConflict) {
		return nil, err
	}

	// Out of attempts. Report a definite rejection if fresh state has one.
	_, checkErr := c.checker.Check(ctx, req.MovieName, req.TheatreName, req.SeatNumbers)
	if checkErr != nil {
		return nil, checkErr
	}

	c.logger.Warn("booking abandoned after repeated concurrent updates",
		"movie_name", req.MovieName,
		"theatre_name", req.TheatreName,
		"attempts", attempt)

	return nil, domain.ErrEditConflict
}

// commit is detached from the caller's cancellation so a started write always completes.
func (c *Coordinator) commit(ctx context.Context, booking *domain.Booking, showing *domain.Showing) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.storeTimeout)
	defer cancel()

	return c.bookings.Create(ctx, booking, showing)
}

func (c *Coordinator) notify(ctx context.Context, message string) {
	err := c.notifier.Publish(context.WithoutCancel(ctx), c.topic, message)
	if err != nil {
		c.logger.Warn("failed to emit booking notification", "topic", c.topic, "error", err)
	}
}

func newBooking(req domain.BookingRequest) *domain.Booking {
	seats := make([]string, len(req.SeatNumbers))
	copy(seats, req.SeatNumbers)

	return &domain.Booking{
		ID:          uuid.NewString(),
		LoginID:     req.LoginID,
		MovieName:   req.MovieName,
		TheatreName: req.TheatreName,
		NoOfTickets: len(seats),
		SeatNumbers: seats,
	}
}
