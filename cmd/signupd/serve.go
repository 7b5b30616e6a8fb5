package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shift-signup-backend/internal/api"
	"shift-signup-backend/internal/db"
	"shift-signup-backend/internal/eligibility"
	"shift-signup-backend/internal/notification"
	"shift-signup-backend/internal/photo"
	"shift-signup-backend/internal/signup"
	"shift-signup-backend/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notification workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	cfg, log := a.cfg, a.log

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		log.Warn("VAPID keys are not configured, push notifications will fail")
	}
	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("database initialized", zap.String("driver", cfg.Database.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	var photos eligibility.PhotoStatusProvider = store.NewPhotoStatuses(gormDB)
	if cfg.Photo.URL != "" {
		photos = photo.NewClient(&cfg.Photo, log)
		log.Info("using upstream photo service", zap.String("url", cfg.Photo.URL))
	}
	evaluator := eligibility.NewEvaluator(appStore, photos, store.NewManualReviews(gormDB), log)

	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, appStore, &webpushOptions, log)
	pool.Start(ctx)

	coord := signup.NewCoordinator(appStore, evaluator, pool, signup.Settings{
		Eligibility: eligibility.Settings{
			ManualReviewDisabledAllowSignups:  cfg.Signup.ManualReviewDisabledAllowSignups,
			ManualReviewProspectiveAlphaLimit: cfg.Signup.ManualReviewProspectiveAlphaLimit,
		},
		EnforceEligibility: cfg.Signup.EnforceEligibility,
	}, log)

	router := api.NewRouter(api.NewHandler(appStore, coord, &webpushOptions, log), cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-stop:
	}
	log.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	cancel()

	log.Info("server gracefully stopped")
	return nil
}
