// Package main provides the entry point for the prediction API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/database"
	"github.com/yourusername/magajico/internal/logger"
	"github.com/yourusername/magajico/internal/metrics"
	"github.com/yourusername/magajico/internal/predictor"
	"github.com/yourusername/magajico/internal/ratelimit"
	"github.com/yourusername/magajico/internal/repository"
	"github.com/yourusername/magajico/internal/scheduler"
	"github.com/yourusername/magajico/internal/server"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	envFile    string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded before configuration")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "predictor-api",
	Short: "MagajiCo match outcome prediction API",
	Long:  `Trains the classifier ensemble and serves fixture outcome predictions over HTTP.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Train the model and start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("predictor-api %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// MAGAJICO_CONFIG_PATH takes precedence over --config
	if err := config.ReloadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func serve(cfg *config.Config) error {
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"version":     Version,
		"commit":      GitCommit,
		"environment": cfg.App.Environment,
	}).Info("Starting prediction API")

	metrics.InitRegistry()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	predictorDeps := predictor.Dependencies{Logger: appLog}
	serverDeps := server.Dependencies{Logger: appLog}

	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		repos, err := repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
		predictorDeps.Models = repos.Model
		serverDeps.Predictions = repos.Prediction
		serverDeps.DB = db
	}

	if cfg.RateLimit.Enabled {
		limiter, err := newLimiter(ctx, cfg, appLog)
		if err != nil {
			return err
		}
		serverDeps.Limiter = limiter
	}

	p := predictor.New(cfg.Predictor, predictorDeps)
	serverDeps.Predictor = p
	srv := server.New(cfg, serverDeps)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	// the API answers /ready with 503 until this completes
	trainErr := make(chan error, 1)
	go func() {
		if _, err := p.TrainSynthetic(ctx, cfg.Predictor.Training.Samples, cfg.Predictor.Training.Seed); err != nil {
			trainErr <- err
		}
	}()

	var sched *scheduler.Scheduler
	if cfg.Retraining.Enabled {
		samples := cfg.Retraining.Samples
		if samples == 0 {
			samples = cfg.Predictor.Training.Samples
		}
		sched = scheduler.NewScheduler(p, appLog)
		if err := sched.ScheduleRetraining(cfg.Retraining.Schedule, samples); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
	}

	var runErr error
	select {
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case err := <-trainErr:
		runErr = fmt.Errorf("initial training failed: %w", err)
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	}

	if sched != nil {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Warn("Scheduler did not stop cleanly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Warn("Graceful shutdown failed")
	}

	appLog.Info("Prediction API stopped")
	return runErr
}

// newLimiter builds the configured rate limit store
func newLimiter(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) (*ratelimit.Limiter, error) {
	window := cfg.RateLimit.Window()

	if cfg.RateLimit.Backend == "redis" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		go func() {
			<-ctx.Done()
			client.Close()
		}()
		return ratelimit.NewLimiter(ratelimit.NewRedisStore(client, cfg.Redis.KeyPrefix), cfg.RateLimit.Requests, window), nil
	}

	store := ratelimit.NewMemoryStore()
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				store.Sweep(window, now)
			}
		}
	}()

	appLog.WithFields(logrus.Fields{
		"requests": cfg.RateLimit.Requests,
		"window":   window.String(),
	}).Info("In-memory rate limiting enabled")
	return ratelimit.NewLimiter(store, cfg.RateLimit.Requests, window), nil
}
