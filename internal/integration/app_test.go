package integration_test

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/app"
	"github.com/metinatakli/movie-booking-system/internal/repository"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App      *app.Application
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Notifier *RecordingNotifier
	Logger   *slog.Logger
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	notifier := &RecordingNotifier{}

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	showingRepo := repository.NewPostgresShowingRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)

	application, err := app.NewApp(cfg, logger, showingRepo, bookingRepo, notifier)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	return &TestApp{
		App:      application,
		DB:       db,
		Redis:    redisClient,
		Notifier: notifier,
		Logger:   logger,
	}, nil
}

func (a *TestApp) Close() {
	a.DB.Close()
	a.Redis.Close()
}

type Notification struct {
	Topic   string
	Message string
}

// RecordingNotifier keeps every published notification in memory.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

func (n *RecordingNotifier) Publish(ctx context.Context, topic, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, Notification{Topic: topic, Message: message})

	return nil
}

func (n *RecordingNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	sent := make([]Notification, len(n.sent))
	copy(sent, n.sent)

	return sent
}

func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = nil
}
