package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/metinatakli/movie-booking-system/api"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/metinatakli/movie-booking-system/internal/booking"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/metinatakli/movie-booking-system/internal/mailer"
	"github.com/metinatakli/movie-booking-system/internal/notify"
	"github.com/metinatakli/movie-booking-system/internal/repository"
	appvalidator "github.com/metinatakli/movie-booking-system/internal/validator"
	"github.com/metinatakli/movie-booking-system/internal/vcs"
	"github.com/metinatakli/movie-booking-system/migrations"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "movie-booking-api"

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	validator *validator.Validate
	openapi   *openapi3.T
	verifier  *auth.Verifier

	coordinator *booking.Coordinator
	catalog     *booking.Catalog
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	showingRepo domain.ShowingRepository,
	bookingRepo domain.BookingRepository,
	notifier domain.Notifier) (*Application, error) {

	doc, err := api.LoadSpec()
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}

	bookingCfg := booking.Config{
		MaxAttempts:  cfg.Booking.MaxAttempts,
		StoreTimeout: cfg.Booking.StoreTimeout,
		Topic:        cfg.Notify.Topic,
	}

	return &Application{
		config:      cfg,
		logger:      logger,
		validator:   appvalidator.NewValidator(),
		openapi:     doc,
		verifier:    auth.NewVerifier(cfg.JWT.Secret),
		coordinator: booking.NewCoordinator(showingRepo, bookingRepo, notifier, logger, bookingCfg),
		catalog:     booking.NewCatalog(showingRepo, bookingRepo, notifier, logger, bookingCfg),
	}, nil
}

func Run() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg, displayVersion, err := ParseConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	textHandler := slog.NewTextHandler(os.Stdout, nil)
	logger := slog.New(textHandler)

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(textHandler, otelslog.NewHandler(serviceName)))
	}

	repos, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	dispatcher := notify.NewDispatcher(publisher, logger, notify.DispatcherConfig{
		QueueSize: cfg.Notify.QueueSize,
		Workers:   cfg.Notify.Workers,
		Timeout:   cfg.Notify.Timeout,
	})
	dispatcher.Start()

	app, err := NewApp(cfg, logger, repos.showings, repos.bookings, dispatcher)
	if err != nil {
		return err
	}

	sweep, err := app.startStatusSweep()
	if err != nil {
		return err
	}

	err = app.serve()

	if sweep != nil {
		shutdownErr := sweep.Shutdown()
		if shutdownErr != nil {
			logger.Error("failed to stop status sweep", "error", shutdownErr)
		}
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	drainErr := dispatcher.Shutdown(drainCtx)
	if drainErr != nil {
		logger.Warn("pending notifications were not delivered before shutdown", "error", drainErr)
	}

	return err
}

type stores struct {
	showings domain.ShowingRepository
	bookings domain.BookingRepository
	close    func()
}

func openStores(cfg Config, logger *slog.Logger) (*stores, error) {
	switch cfg.Store {
	case StorePostgres:
		if cfg.DB.Migrate {
			err := MigrateUp(cfg.DB.DSN)
			if err != nil {
				return nil, err
			}

			logger.Info("database migrations applied")
		}

		db, err := NewDatabasePool(cfg)
		if err != nil {
			return nil, err
		}

		return &stores{
			showings: repository.NewPostgresShowingRepository(db),
			bookings: repository.NewPostgresBookingRepository(db),
			close:    db.Close,
		}, nil

	case StoreRedis:
		rdb, err := NewRedisClient(cfg)
		if err != nil {
			return nil, err
		}

		return &stores{
			showings: repository.NewRedisShowingRepository(rdb),
			bookings: repository.NewRedisBookingRepository(rdb),
			close: func() {
				rdb.Close()
			},
		}, nil

	case StoreMemory:
		logger.Warn("using in-memory store, data will not survive a restart")

		store := repository.NewMemoryStore()

		return &stores{
			showings: store.Showings(),
			bookings: store.Bookings(),
			close:    func() {},
		}, nil
	}

	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// newPublisher builds the downstream notification channels from configuration.
// Without any channel configured, notifications are only logged.
func newPublisher(cfg Config, logger *slog.Logger) (domain.Notifier, func()) {
	var (
		publishers notify.Fanout
		closers    []func() error
	)

	if cfg.AMQP.URL != "" {
		amqpPublisher := notify.NewAMQPPublisher(cfg.AMQP.URL)
		publishers = append(publishers, amqpPublisher)
		closers = append(closers, amqpPublisher.Close)
	}

	if cfg.SMTP.Host != "" && cfg.SMTP.Recipient != "" {
		smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)
		publishers = append(publishers, notify.NewMailPublisher(smtpMailer, cfg.SMTP.Recipient))
	}

	closeAll := func() {
		for _, c := range closers {
			err := c()
			if err != nil {
				logger.Error("failed to close notification publisher", "error", err)
			}
		}
	}

	if len(publishers) == 0 {
		logger.Warn("no notification channel configured, notifications will only be logged")
		return notify.LogNotifier{Logger: logger}, closeAll
	}

	return publishers, closeAll
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// MigrateUp applies the embedded schema migrations to the database at dsn.
func MigrateUp(dsn string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source error: %w", err)
	}

	connConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	db := stdlib.OpenDB(*connConfig.ConnConfig)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("pgx migration driver error: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("migrate.New error: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "store", app.config.Store)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
