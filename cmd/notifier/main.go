// Command notifier drains the booking notification queue and logs every event.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/metinatakli/movie-booking-system/internal/booking"
	"github.com/metinatakli/movie-booking-system/internal/notify"
	"github.com/metinatakli/movie-booking-system/internal/vcs"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	var (
		amqpURL string
		topic   string
	)

	flag.StringVar(&amqpURL, "amqp-url", os.Getenv("AMQP_URL"), "RabbitMQ URL")
	flag.StringVar(&topic, "notify-topic", envOr("NOTIFY_TOPIC", booking.DefaultTopic), "Queue to consume")
	displayVersion := flag.Bool("version", false, "Display version and exit")
	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", vcs.Version())
		return nil
	}

	if amqpURL == "" {
		return errors.New("-amqp-url is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := notify.NewConsumer(amqpURL, topic, logMessage(logger), logger)

	logger.Info("notifier started", "queue", topic)

	err = consumer.Run(ctx)

	logger.Info("notifier stopped")

	return err
}

func logMessage(logger *slog.Logger) notify.HandlerFunc {
	return func(ctx context.Context, msg notify.Message) error {
		logger.InfoContext(ctx, "notification received",
			"topic", msg.Topic,
			"sent_at", msg.Timestamp,
			"message", msg.Body)

		return nil
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
