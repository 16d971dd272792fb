package app

import (
	"context"

	"github.com/go-co-op/gocron/v2"
)

// startStatusSweep periodically repairs showings whose label disagrees with their
// remaining count. A zero interval disables the sweep.
func (app *Application) startStatusSweep() (gocron.Scheduler, error) {
	interval := app.config.Booking.StatusSweepInterval
	if interval <= 0 {
		return nil, nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(app.sweepStatuses),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("status-sweep"),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	app.logger.Info("status sweep scheduled", "interval", interval)

	return s, nil
}

func (app *Application) sweepStatuses() {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Booking.StatusSweepInterval)
	defer cancel()

	repaired, err := app.catalog.RefreshAll(ctx)
	if err != nil {
		app.logger.Error("status sweep failed", "error", err)
		return
	}

	if repaired > 0 {
		app.logger.Info("status sweep repaired showings", "movies", repaired)
	}
}
