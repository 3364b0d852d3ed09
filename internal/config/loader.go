package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix         = "MAGAJICO"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	setDefaults(v)

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration, tolerating a missing file
// Defaults are layered under the file, and environment variables over both.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	return unmarshal(v)
}

// Default returns the documented default configuration
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := unmarshal(v)
	if err != nil {
		// defaults are static; a decode failure is a programming error
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix(envPrefix)

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every default value; AutomaticEnv only resolves keys viper knows about
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "magajico-predictor")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.frontend_url", "")
	v.SetDefault("server.max_concurrent", 10)
	v.SetDefault("server.max_batch_size", 100)
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.websocket_enabled", true)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("predictor.model_version", "3.0.0")
	v.SetDefault("predictor.deterministic", false)
	v.SetDefault("predictor.seed", 0)
	v.SetDefault("predictor.training.samples", 2000)
	v.SetDefault("predictor.training.cv_folds", 5)
	v.SetDefault("predictor.training.seed", 42)
	v.SetDefault("predictor.random_forest.trees", 150)
	v.SetDefault("predictor.random_forest.max_depth", 12)
	v.SetDefault("predictor.random_forest.min_samples_split", 5)
	v.SetDefault("predictor.random_forest.seed", 42)
	v.SetDefault("predictor.gradient_boosting.stages", 100)
	v.SetDefault("predictor.gradient_boosting.max_depth", 3)
	v.SetDefault("predictor.gradient_boosting.learning_rate", 0.1)
	v.SetDefault("predictor.gradient_boosting.min_samples_split", 2)
	v.SetDefault("predictor.gradient_boosting.subsample", 1.0)
	v.SetDefault("predictor.gradient_boosting.seed", 42)
	v.SetDefault("predictor.logistic_regression.max_iterations", 1000)
	v.SetDefault("predictor.logistic_regression.learning_rate", 0.5)
	v.SetDefault("predictor.logistic_regression.l2", 0.001)
	v.SetDefault("predictor.logistic_regression.tolerance", 1e-6)
	v.SetDefault("predictor.fusion.ensemble_weight", 0.60)
	v.SetDefault("predictor.fusion.market_weight", 0.25)
	v.SetDefault("predictor.fusion.sharp_weight", 0.15)
	v.SetDefault("predictor.confidence.base_weight", 0.40)
	v.SetDefault("predictor.confidence.consensus_weight", 0.15)
	v.SetDefault("predictor.confidence.market_validation_weight", 0.15)
	v.SetDefault("predictor.confidence.sharp_confirmation_weight", 0.15)
	v.SetDefault("predictor.confidence.feature_quality_weight", 0.08)
	v.SetDefault("predictor.confidence.risk_factor_weight", 0.07)
	v.SetDefault("predictor.sharp.margin", 0.02)
	v.SetDefault("predictor.sharp.sharp_money_threshold", 0.6)
	v.SetDefault("predictor.sharp.sharp_adjustment", 0.05)
	v.SetDefault("predictor.sharp.line_movement_weight", 0.02)
	v.SetDefault("predictor.sharp.sentinel_odds", 100.0)
	v.SetDefault("predictor.value.edge_threshold", 0.10)
	v.SetDefault("predictor.value.high_edge_threshold", 0.20)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.max_size", 10000)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window_seconds", 60)
	v.SetDefault("rate_limit.backend", "memory")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "magajico:ratelimit:")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("retraining.enabled", false)
	v.SetDefault("retraining.schedule", "0 3 * * *")
	v.SetDefault("retraining.samples", 0)

	v.SetDefault("secrets.enabled", false)
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.secret_name", "")
}

// ReloadFromEnv reloads the configuration when MAGAJICO_CONFIG_PATH points at a file
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := LoadWithDefaults(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}
