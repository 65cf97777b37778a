package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/backend"
	"saldo/internal/config"
	apphttp "saldo/internal/http"
	"saldo/internal/insights"
	applog "saldo/internal/log"
	"saldo/internal/notify"
	"saldo/internal/state"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(slog.LevelInfo, applog.ComponentApp)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	docs, err := backend.New(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	}, componentLogger(applog.ComponentStorage))
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer docs.Close()

	store := state.NewStore(docs, componentLogger(applog.ComponentState))
	if err := store.Load(context.Background()); err != nil {
		logger.Error("Failed to load persisted state", "error", err)
		os.Exit(1)
	}

	persister := state.NewPersister(docs, componentLogger(applog.ComponentState))
	store.Subscribe(persister.Listener())

	// Reminder delivery: AMQP when a broker is configured, logs otherwise.
	var notifier notify.Notifier = &notify.LogNotifier{Logger: componentLogger(applog.ComponentNotify)}
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		notifier = &notify.AMQPNotifier{Client: amqpClient}
		logger.Info("AMQP reminder delivery enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - reminders go to the log")
	}

	scanHour, scanMinute := cfg.ScanClock()
	scheduler := notify.NewScheduler(notifier, componentLogger(applog.ComponentNotify), scanHour, scanMinute, cfg.AlarmLookback)
	store.Subscribe(scheduler.Listener())

	// Timers live in memory only; rebuild them from the loaded state.
	rebuilt := scheduler.Rescan(store.State().ExpenseList)
	logger.Info("Alarm timers rebuilt", "count", rebuilt)

	// A daily pass catches alarms whose fire date arrived while running.
	cronRunner := notify.NewCronRunner()
	if _, err := cronRunner.ScheduleDaily(scanHour, scanMinute, func() {
		n := scheduler.Rescan(store.State().ExpenseList)
		logger.Info("Daily alarm rescan complete", "count", n)
	}); err != nil {
		logger.Error("Failed to schedule daily rescan", "error", err)
		os.Exit(1)
	}

	var insightClient insights.Client
	if cfg.OpenAIAPIKey != "" {
		insightClient, err = insights.NewOpenAIClient(insights.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			logger.Error("Failed to initialize insight client", "error", err)
			os.Exit(1)
		}
		logger.Info("Insight generation enabled", "model", cfg.OpenAIModel)
	} else {
		logger.Info("No OPENAI_API_KEY - spending insights fall back to local heuristics")
	}
	insightSvc := insights.NewService(insightClient, componentLogger(applog.ComponentInsights))

	srv := apphttp.NewServer(":"+cfg.Port, store, persister, insightSvc, scheduler)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting saldo server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		cronRunner.Start()
		<-gctx.Done()
		cronRunner.Stop()
		scheduler.CancelAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func componentLogger(component string) *slog.Logger {
	return slog.Default().With(applog.FieldComponent, component)
}
