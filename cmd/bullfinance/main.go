package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"bullfinance/internal/amqp"
	"bullfinance/internal/auth"
	"bullfinance/internal/cache"
	"bullfinance/internal/chat"
	"bullfinance/internal/cli"
	"bullfinance/internal/export"
	"bullfinance/internal/finance"
	apphttp "bullfinance/internal/http"
	"bullfinance/internal/log"
	"bullfinance/internal/services"
)

const datasetCacheSize = 256

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentHTTP)
	cfg := cli.LoadAndValidateConfig(logger)

	backend, err := cli.OpenStore(cfg)
	if err != nil {
		logger.Error("Failed to open data backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer backend.Store.Close()

	datasets := cache.NewLRUCache[finance.Dataset](datasetCacheSize, cfg.DatasetCacheTTL)
	caches := cache.NewManager()
	caches.Register(datasets)
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	reports := services.NewReportService(backend.Store, datasets)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	var (
		amqpClient *amqp.Client
		publisher  services.OccurrencePublisher
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, occurrences from the worker will not refresh cached reports", log.FieldError, err.Error())
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	svc := apphttp.Services{
		Auth:      auth.NewService(backend.Store, tokens),
		Tokens:    tokens,
		Records:   services.NewRecordService(backend.Store, reports),
		Reports:   reports,
		Bank:      services.NewBankService(backend.Store, reports),
		Scheduler: services.NewRecurrenceScheduler(backend.Store, publisher, reports, cfg.MaxCatchUp),
		Ready:     backend.Ping,
	}

	var generator chat.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := chat.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Chat disabled", log.FieldError, err.Error())
		} else {
			generator = g
		}
	}
	svc.Chat = chat.NewRelay(generator)

	if cfg.SheetsEnabled() {
		creds, err := cfg.ServiceAccountCredentials()
		if err == nil {
			svc.Sheets, err = export.NewSheetsRenderer(context.Background(), cfg.GoogleSpreadsheetID, creds)
		}
		if err != nil {
			logger.Warn("Sheets export disabled", log.FieldError, err.Error())
			svc.Sheets = nil
		}
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:         logger,
		RateLimit:      cfg.RateLimit,
		TrustedProxies: cfg.TrustedProxies,
		CORSOrigin:     cfg.CORSOrigin,
	})
	if err != nil {
		logger.Error("Failed to build server", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting bullfinance server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"chat", generator != nil,
			"sheets", svc.Sheets != nil,
			"amqp", amqpClient != nil)
		return srv.ListenAndServe()
	})
	if amqpClient != nil {
		g.Go(func() error {
			amqpLogger := logger.WithComponent(log.ComponentAMQP)
			err := amqpClient.ConsumeOccurrences(gctx, func(ctx context.Context, msg *amqp.OccurrenceMessage) error {
				reports.InvalidateCompany(msg.CompanyID)
				amqpLogger.Debug("Report cache invalidated",
					log.FieldCompanyID, msg.CompanyID,
					"record_id", msg.RecordID)
				return nil
			})
			if err != nil && gctx.Err() == nil {
				// The API keeps serving; cached reports only expire by TTL from here on.
				amqpLogger.Error("Occurrence consumer stopped", log.FieldError, err.Error())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}
	<-done
	logger.Info("Server stopped gracefully")
}
