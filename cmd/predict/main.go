// Package main provides a command line client for fixture predictions.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yourusername/magajico/internal/client"
	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/logger"
	"github.com/yourusername/magajico/internal/models"
	"github.com/yourusername/magajico/internal/predictor"
	"github.com/yourusername/magajico/internal/server"
)

var (
	configFile string
	apiURL     string
	timeout    time.Duration
	contextKV  map[string]string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file (local mode)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", "", "Prediction API base URL; trains a local model when empty")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall command timeout")
	predictCmd.Flags().StringToStringVar(&contextKV, "context", nil, "Match context as key=value pairs")
	rootCmd.AddCommand(predictCmd, infoCmd)
}

var rootCmd = &cobra.Command{
	Use:   "magajico",
	Short: "Predict fixture outcomes",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict FEATURES",
	Short: "Predict one fixture from a JSON array of 7 features",
	Example: `  magajico predict '[0.8,0.3,0.6,2.1,0.8,1.2,1.9]'
  magajico predict --url http://localhost:8000 '[0.5,0.5,0.5,0.5,0.5,0.5,0.5]' --context home_team=Arsenal`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var features []float64
		if err := json.Unmarshal([]byte(args[0]), &features); err != nil {
			return fmt.Errorf("features must be a JSON array of numbers: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if apiURL != "" {
			c := client.New(client.DefaultConfig(apiURL), nil)
			defer c.Close()
			resp, err := c.Predict(ctx, features, contextKV)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		}

		p, err := localPredictor(ctx)
		if err != nil {
			return err
		}
		result, err := p.Predict(ctx, features)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), server.NewPredictionResponse(result, contextKV, false))
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the active model description",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		var info *models.ModelInfo
		if apiURL != "" {
			c := client.New(client.DefaultConfig(apiURL), nil)
			defer c.Close()
			remote, err := c.ModelInfo(ctx)
			if err != nil {
				return err
			}
			info = remote
		} else {
			p, err := localPredictor(ctx)
			if err != nil {
				return err
			}
			local, err := p.ModelInfo()
			if err != nil {
				return err
			}
			info = &local
		}
		return printJSON(cmd.OutOrStdout(), info)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// localPredictor trains an in-process model from the configured defaults
func localPredictor(ctx context.Context) (*predictor.Predictor, error) {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLoggerWithOutput("warn", cfg.App.Environment, os.Stderr)
	return predictor.NewTrained(ctx, cfg.Predictor, predictor.Dependencies{Logger: appLog})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
