package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/metinatakli/movie-booking-system/internal/domain"
)

// Catalog holds the showing-level operations: adding, listing, status
// maintenance and deletion.
type Catalog struct {
	showings     domain.ShowingRepository
	bookings     domain.BookingRepository
	notifier     domain.Notifier
	logger       *slog.Logger
	storeTimeout time.Duration
	topic        string
	maxAttempts  uint

	newBackOff func() backoff.BackOff
}

func NewCatalog(
	showings domain.ShowingRepository,
	bookings domain.BookingRepository,
	notifier domain.Notifier,
	logger *slog.Logger,
	cfg Config) *Catalog {

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}

	return &Catalog{
		showings:     showings,
		bookings:     bookings,
		notifier:     notifier,
		logger:       logger,
		storeTimeout: cfg.StoreTimeout,
		topic:        cfg.Topic,
		maxAttempts:  uint(cfg.MaxAttempts),
		newBackOff:   newCommitBackOff,
	}
}

func (c *Catalog) AddShowing(ctx context.Context, movieName, theatreName string, ticketsAvailable int) (*domain.Showing, error) {
	if ticketsAvailable < 0 {
		return nil, fmt.Errorf("tickets available must not be negative: %d", ticketsAvailable)
	}

	showing := domain.NewShowing(movieName, theatreName, ticketsAvailable)

	ctx, cancel := withStoreTimeout(ctx, c.storeTimeout)
	defer cancel()

	err := c.showings.Create(ctx, showing)
	if err != nil {
		return nil, fmt.Errorf("failed to create showing: %w", err)
	}

	return showing, nil
}

func (c *Catalog) ListShowings(ctx context.Context) ([]domain.Showing, error) {
	ctx, cancel := withStoreTimeout(ctx, c.storeTimeout)
	defer cancel()

	return c.showings.GetAll(ctx)
}

// SearchShowings matches movie names starting with the given text, ignoring case.
func (c *Catalog) SearchShowings(ctx context.Context, movieName string) ([]domain.Showing, error) {
	ctx, cancel := withStoreTimeout(ctx, c.storeTimeout)
	defer cancel()

	return c.showings.SearchByMovieName(ctx, strings.TrimSpace(movieName))
}

func (c *Catalog) BookedTickets(ctx context.Context, movieName string) ([]domain.Booking, error) {
	ctx, cancel := withStoreTimeout(ctx, c.storeTimeout)
	defer cancel()

	return c.bookings.FindByMovieName(ctx, movieName)
}

// RefreshStatus relabels every showing of the movie from its remaining count.
// Showings that already carry the right label are not written.
func (c *Catalog) RefreshStatus(ctx context.Context, movieName string) ([]domain.Showing, error) {
	operation := func() ([]domain.Showing, error) {
		showings, err := c.findByMovieName(ctx, movieName)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		if len(showings) == 0 {
			return nil, backoff.Permanent(domain.ErrShowingNotFound)
		}

		err = c.relabel(ctx, showings)
		if err != nil {
			if errors.Is(err, domain.ErrEditConflict) {
				return nil, err
			}

			return nil, backoff.Permanent(err)
		}

		return showings, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxAttempts),
	)
}

// RefreshAll repairs the label of every showing in the catalog and reports how
// many movies needed a repair.
func (c *Catalog) RefreshAll(ctx context.Context) (int, error) {
	showings, err := c.ListShowings(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool)
	var stale []string

	for _, s := range showings {
		if s.HasConsistentStatus() || seen[s.MovieName] {
			continue
		}

		seen[s.MovieName] = true
		stale = append(stale, s.MovieName)
	}

	var errs []error
	repaired := 0

	for _, movieName := range stale {
		_, err := c.RefreshStatus(ctx, movieName)
		if err != nil {
			if errors.Is(err, domain.ErrShowingNotFound) {
				continue
			}

			errs = append(errs, fmt.Errorf("refresh %q: %w", movieName, err))
			continue
		}

		repaired++
	}

	return repaired, errors.Join(errs...)
}

// DeleteShowings removes every showing of the movie. Bookings are kept.
func (c *Catalog) DeleteShowings(ctx context.Context, movieName string) error {
	deleted, err := c.deleteByMovieName(ctx, movieName)
	if err != nil {
		return fmt.Errorf("failed to delete showings: %w", err)
	}

	if deleted == 0 {
		return domain.ErrShowingNotFound
	}

	c.logger.Info("showings deleted", "movie_name", movieName, "count", deleted)

	err = c.notifier.Publish(context.WithoutCancel(ctx), c.topic, DeletedMessage(movieName))
	if err != nil {
		c.logger.Warn("failed to emit deletion notification", "topic", c.topic, "error", err)
	}

	return nil
}

func (c *Catalog) relabel(ctx context.Context, showings []domain.Showing) error {
	for i := range showings {
		s := &showings[i]

		if s.HasConsistentStatus() {
			continue
		}

		s.Status = domain.StatusFor(s.TicketsAvailable)

		err := c.updateStatus(ctx, s)
		if err != nil {
			return err
		}

		c.logger.Info("showing status updated",
			"showing_id", s.ID,
			"movie_name", s.MovieName,
			"theatre_name", s.TheatreName,
			"status", s.Status)
	}

	return nil
}

func (c *Catalog) findByMovieName(ctx context.Context, movieName string) ([]domain.Showing, error) {
	ctx, cancel := withStoreTimeout(ctx, c.storeTimeout)
	defer cancel()

	return c.showings.FindByMovieName(ctx, movieName)
}

func (c *Catalog) updateStatus(ctx context.Context, showing *domain.Showing) error {
	ctx, cancel := withStoreTimeout(ctx, c.storeTimeout)
	defer cancel()

	return c.showings.UpdateStatus(ctx, showing)
}

func (c *Catalog) deleteByMovieName(ctx context.Context, movieName string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.storeTimeout)
	defer cancel()

	return c.showings.DeleteByMovieName(ctx, movieName)
}
