package app

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/booking"
	"github.com/metinatakli/movie-booking-system/internal/notify"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	Port             int
	Env              string
	Store            string
	OtelCollectorUrl string

	DB      DBConfig
	Redis   RedisConfig
	AMQP    AMQPConfig
	Notify  NotifyConfig
	SMTP    SMTPConfig
	JWT     JWTConfig
	Booking BookingConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
	Migrate      bool
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type AMQPConfig struct {
	URL string
}

type NotifyConfig struct {
	Topic     string
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Sender    string
	Recipient string
}

type JWTConfig struct {
	Secret string
}

type BookingConfig struct {
	MaxAttempts         int
	StoreTimeout        time.Duration
	StatusSweepInterval time.Duration
}

// ParseConfig reads flags from args. Every flag falls back to an environment
// variable, so a .env file loaded beforehand can configure the service.
func ParseConfig(args []string) (Config, bool, error) {
	var cfg Config

	fs := flag.NewFlagSet("movie-booking-api", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", envInt("PORT", 8080), "server port")
	fs.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	fs.StringVar(&cfg.Store, "store", envString("STORE", StorePostgres), "Storage backend (postgres|redis|memory)")
	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")
	fs.BoolVar(&cfg.DB.Migrate, "db-migrate", envBool("DB_MIGRATE", false), "Apply database migrations on startup")

	fs.StringVar(&cfg.Redis.URL, "redis-url", envString("REDIS_URL", ""), "Redis address")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", envInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", envInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", envDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")

	fs.StringVar(&cfg.AMQP.URL, "amqp-url", envString("AMQP_URL", ""), "RabbitMQ URL for notifications")

	fs.StringVar(&cfg.Notify.Topic, "notify-topic", envString("NOTIFY_TOPIC", booking.DefaultTopic), "Notification topic")
	fs.IntVar(&cfg.Notify.QueueSize, "notify-queue-size", envInt("NOTIFY_QUEUE_SIZE", notify.DefaultQueueSize), "Pending notification capacity")
	fs.IntVar(&cfg.Notify.Workers, "notify-workers", envInt("NOTIFY_WORKERS", notify.DefaultWorkers), "Notification workers")
	fs.DurationVar(&cfg.Notify.Timeout, "notify-timeout", envDuration("NOTIFY_TIMEOUT", notify.DefaultPublishTimeout), "Timeout for a single notification publish")

	fs.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", ""), "SMTP host")
	fs.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	fs.StringVar(&cfg.SMTP.Username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	fs.StringVar(&cfg.SMTP.Password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	fs.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SMTP_SENDER", "Movie Booking <no-reply@moviebooking.local>"), "SMTP sender")
	fs.StringVar(&cfg.SMTP.Recipient, "smtp-recipient", envString("SMTP_RECIPIENT", ""), "Mailbox receiving booking notifications")

	fs.StringVar(&cfg.JWT.Secret, "jwt-secret", envString("JWT_SECRET", ""), "HMAC secret used to verify bearer tokens")

	fs.IntVar(&cfg.Booking.MaxAttempts, "booking-max-attempts", envInt("BOOKING_MAX_ATTEMPTS", booking.DefaultMaxAttempts), "Commit attempts per booking under contention")
	fs.DurationVar(&cfg.Booking.StoreTimeout, "store-timeout", envDuration("STORE_TIMEOUT", booking.DefaultStoreTimeout), "Timeout for a single storage call")
	fs.DurationVar(&cfg.Booking.StatusSweepInterval, "status-sweep-interval", envDuration("STATUS_SWEEP_INTERVAL", 0), "Interval of the ticket status repair sweep (0 disables)")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)
	if err != nil {
		return Config{}, false, err
	}

	if *displayVersion {
		return cfg, true, nil
	}

	err = cfg.validate()
	if err != nil {
		return Config{}, false, err
	}

	return cfg, false, nil
}

func (cfg Config) validate() error {
	switch cfg.Store {
	case StorePostgres:
		if cfg.DB.DSN == "" {
			return fmt.Errorf("-db-dsn is required for the %s store", cfg.Store)
		}
	case StoreRedis:
		if cfg.Redis.URL == "" {
			return fmt.Errorf("-redis-url is required for the %s store", cfg.Store)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.JWT.Secret == "" {
		return fmt.Errorf("-jwt-secret is required")
	}

	if cfg.Booking.MaxAttempts < 1 {
		return fmt.Errorf("-booking-max-attempts must be at least 1")
	}

	return nil
}

func envString(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	return value
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func envBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}
