package main

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

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	advisor "github.com/marycampus/advisor"
	"github.com/marycampus/advisor/app/routes"
	"github.com/marycampus/advisor/internal/config"
	"github.com/marycampus/advisor/pkg/middleware"
	sessionstore "github.com/marycampus/advisor/pkg/session"
	"github.com/marycampus/advisor/pkg/upload"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the advising server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(cfg.LogHandler(os.Stderr))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploads, err := uploadStore(ctx, cfg)
	if err != nil {
		return err
	}
	snapshots, err := snapshotStore(cfg)
	if err != nil {
		return err
	}

	app, err := advisor.New(advisor.Config{
		Title:   cfg.Title,
		MountID: cfg.MountID,
		DevMode: cfg.Dev(),
		Static:  advisor.StaticConfig{Dir: cfg.Static.Dir},
		Session: advisor.SessionConfig{
			IdleTimeout:  cfg.Session.TTL,
			ResumeWindow: cfg.Session.ResumeWindow,
			MaxSessions:  cfg.Session.MaxSessions,
		},
		Uploads: advisor.UploadConfig{
			Store:    uploads,
			MaxBytes: cfg.Upload.MaxBytes,
		},
		SnapshotStore: snapshots,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	// Middleware and routes must land before the table freezes.
	err = app.Use(
		middleware.Logging(logger),
		middleware.Prometheus(),
		middleware.OpenTelemetry(),
	)
	if err != nil {
		return err
	}
	if err := routes.Register(app); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}
	if err := app.Boot(); err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	prometheus.MustRegister(middleware.NewManagerCollector(app.Manager()))

	mux := chi.NewRouter()
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.Handle("/*", app)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	return app.Shutdown(shutdownCtx)
}

// uploadStore builds the avatar store the configuration names: local
// disk, or S3 with credentials from the ambient AWS environment.
func uploadStore(ctx context.Context, cfg *config.Config) (upload.Store, error) {
	switch cfg.Upload.Backend {
	case config.UploadS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)
		return upload.NewS3Store(client, cfg.Upload.S3Bucket, cfg.Upload.S3Prefix, cfg.Upload.MaxBytes), nil
	default:
		return upload.NewDiskStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	}
}

// snapshotStore keeps session snapshots in Redis when a URL is
// configured, in memory otherwise.
func snapshotStore(cfg *config.Config) (sessionstore.Store, error) {
	if cfg.Session.RedisURL == "" {
		return sessionstore.NewMemoryStore(), nil
	}
	opts, err := redis.ParseURL(cfg.Session.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return sessionstore.NewRedisStore(redis.NewClient(opts)), nil
}
