package main

import (
	"os"
	"time"

	"bullfinance/internal/amqp"
	"bullfinance/internal/cli"
	"bullfinance/internal/log"
	"bullfinance/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	backend, err := cli.OpenStore(cfg)
	if err != nil {
		logger.Error("Failed to open data backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer backend.Store.Close()

	// Occurrences are announced so the API server can drop cached reports.
	var publisher services.OccurrencePublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, occurrences will not be announced", log.FieldError, err.Error())
		} else {
			defer client.Close()
			publisher = client
		}
	} else {
		logger.Info("AMQP disabled, occurrences will not be announced")
	}

	scheduler := services.NewRecurrenceScheduler(backend.Store, publisher, nil, cfg.MaxCatchUp)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	interval := cfg.RecurringInterval
	logger.Info("Recurring processor configured",
		"interval", interval,
		"max_catch_up", cfg.MaxCatchUp,
		"backend", cfg.DataBackend)

	process := func(now time.Time) {
		count, err := scheduler.ProcessDue(ctx, now)
		if err != nil {
			logger.Error("Recurring processing failed", log.FieldError, err.Error())
			return
		}
		logger.Info("Recurring processing complete",
			"records_created", count,
			"next_check", now.Add(interval).Format("15:04:05"))
	}

	process(time.Now())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			<-done
			logger.Info("Recurring-worker stopped")
			return
		case now := <-ticker.C:
			process(now)
		}
	}
}
