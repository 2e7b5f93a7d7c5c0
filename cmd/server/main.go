// @title MovieMate Watch Parties API
// @version 1.0
// @description Schedules group movie nights: proposed time slots, participant availability votes and best-time resolution.
// @BasePath /
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

	"moviemate/config"
	"moviemate/internal/adapters/auth"
	"moviemate/internal/adapters/email"
	"moviemate/internal/adapters/events"
	delivery "moviemate/internal/delivery/http"
	"moviemate/internal/delivery/http/controllers"
	"moviemate/internal/delivery/http/live"
	"moviemate/internal/delivery/http/middleware"
	"moviemate/internal/repository/postgres"
	"moviemate/internal/services"
)

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}
	repo := postgres.NewWatchPartyRepository(db)

	invites := auth.NewInviteTokens(cfg.InviteTokenSecret, cfg.InviteTokenTTL)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		ReplyTo:     cfg.Email.ReplyTo,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
			ConfigurationSet:   cfg.Email.SESConfigurationSet,
		},
	}, logger)
	if err != nil {
		return err
	}
	notifier := services.NewPartyNotifier(mailer, email.NewTemplateRenderer(), invites, cfg.PublicAppURL, logger)

	hub := live.NewHub(repo, cfg.CORSOrigins, logger)
	go func() {
		if err := hub.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("live hub stopped", "err", err)
		}
	}()

	sinks := []events.Sink{{Name: "websocket", Publisher: hub}}
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Warn("rabbitmq unavailable, party events stay in-process", "err", err)
		} else {
			defer rabbit.Close()
			sinks = append(sinks, events.Sink{Name: "rabbitmq", Publisher: rabbit})
		}
	}
	publisher := events.NewMultiPublisher(sinks...)

	svc := services.NewWatchPartyService(repo, notifier, publisher, invites, logger, cfg.RequestTimeout)
	controller := controllers.NewWatchPartyController(logger, svc)

	deps := delivery.RouterDeps{
		Logger:      logger,
		Live:        hub,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	}
	if rdb := config.NewRedisClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		deps.Bucket = middleware.NewRedisTokenBucket(rdb, cfg.RateLimit)
	} else if cfg.Redis.Addr != "" {
		logger.Warn("redis unreachable, rate limiting disabled", "addr", cfg.Redis.Addr)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           delivery.NewRouter(controller, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
