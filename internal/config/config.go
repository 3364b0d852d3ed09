// Package config provides configuration management for the MagajiCo predictor.
package config

import (
	"fmt"
	"net"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Predictor  PredictorConfig  `mapstructure:"predictor" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache" validate:"required"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Retraining RetrainingConfig `mapstructure:"retraining"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Address                string   `mapstructure:"address" validate:"required"`
	FrontendURL            string   `mapstructure:"frontend_url" validate:"omitempty,url"`
	MaxConcurrent          int      `mapstructure:"max_concurrent" validate:"required,gt=0"`
	MaxBatchSize           int      `mapstructure:"max_batch_size" validate:"required,gt=0"`
	ReadTimeoutSeconds     int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds    int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
	WebsocketEnabled       bool     `mapstructure:"websocket_enabled"`
	TrustedProxies         []string `mapstructure:"trusted_proxies" validate:"omitempty,dive,cidr"`
}

// PredictorConfig holds every tunable of the prediction pipeline
type PredictorConfig struct {
	ModelVersion       string                   `mapstructure:"model_version" validate:"required"`
	Deterministic      bool                     `mapstructure:"deterministic"`
	Seed               int64                    `mapstructure:"seed"`
	Training           TrainingConfig           `mapstructure:"training" validate:"required"`
	RandomForest       RandomForestConfig       `mapstructure:"random_forest" validate:"required"`
	GradientBoosting   GradientBoostingConfig   `mapstructure:"gradient_boosting" validate:"required"`
	LogisticRegression LogisticRegressionConfig `mapstructure:"logistic_regression" validate:"required"`
	Fusion             FusionConfig             `mapstructure:"fusion" validate:"required"`
	Confidence         ConfidenceConfig         `mapstructure:"confidence" validate:"required"`
	Sharp              SharpConfig              `mapstructure:"sharp" validate:"required"`
	Value              ValueConfig              `mapstructure:"value" validate:"required"`
}

// TrainingConfig controls synthetic data generation and cross-validation
type TrainingConfig struct {
	Samples int   `mapstructure:"samples" validate:"required,gte=10"`
	CVFolds int   `mapstructure:"cv_folds" validate:"required,gte=2"`
	Seed    int64 `mapstructure:"seed"`
}

// RandomForestConfig represents bagged tree ensemble hyperparameters
type RandomForestConfig struct {
	Trees           int   `mapstructure:"trees" validate:"required,gt=0"`
	MaxDepth        int   `mapstructure:"max_depth" validate:"required,gt=0"`
	MinSamplesSplit int   `mapstructure:"min_samples_split" validate:"required,gte=2"`
	Seed            int64 `mapstructure:"seed"`
}

// GradientBoostingConfig represents boosted tree ensemble hyperparameters
type GradientBoostingConfig struct {
	Stages          int     `mapstructure:"stages" validate:"required,gt=0"`
	MaxDepth        int     `mapstructure:"max_depth" validate:"required,gt=0"`
	LearningRate    float64 `mapstructure:"learning_rate" validate:"required,gt=0,lte=1"`
	MinSamplesSplit int     `mapstructure:"min_samples_split" validate:"required,gte=2"`
	Subsample       float64 `mapstructure:"subsample" validate:"required,gt=0,lte=1"`
	Seed            int64   `mapstructure:"seed"`
}

// LogisticRegressionConfig represents multinomial logistic regression hyperparameters
type LogisticRegressionConfig struct {
	MaxIterations int     `mapstructure:"max_iterations" validate:"required,gt=0"`
	LearningRate  float64 `mapstructure:"learning_rate" validate:"required,gt=0"`
	L2            float64 `mapstructure:"l2" validate:"gte=0"`
	Tolerance     float64 `mapstructure:"tolerance" validate:"gte=0"`
}

// FusionConfig holds the weights blending the three distributions
type FusionConfig struct {
	EnsembleWeight float64 `mapstructure:"ensemble_weight" validate:"gte=0,lte=1"`
	MarketWeight   float64 `mapstructure:"market_weight" validate:"gte=0,lte=1"`
	SharpWeight    float64 `mapstructure:"sharp_weight" validate:"gte=0,lte=1"`
}

// Sum returns the total fusion weight
func (f FusionConfig) Sum() float64 {
	return f.EnsembleWeight + f.MarketWeight + f.SharpWeight
}

// ConfidenceConfig holds the weights of the six confidence factors
type ConfidenceConfig struct {
	BaseWeight              float64 `mapstructure:"base_weight" validate:"gte=0,lte=1"`
	ConsensusWeight         float64 `mapstructure:"consensus_weight" validate:"gte=0,lte=1"`
	MarketValidationWeight  float64 `mapstructure:"market_validation_weight" validate:"gte=0,lte=1"`
	SharpConfirmationWeight float64 `mapstructure:"sharp_confirmation_weight" validate:"gte=0,lte=1"`
	FeatureQualityWeight    float64 `mapstructure:"feature_quality_weight" validate:"gte=0,lte=1"`
	RiskFactorWeight        float64 `mapstructure:"risk_factor_weight" validate:"gte=0,lte=1"`
}

// Sum returns the total confidence weight
func (c ConfidenceConfig) Sum() float64 {
	return c.BaseWeight + c.ConsensusWeight + c.MarketValidationWeight +
		c.SharpConfirmationWeight + c.FeatureQualityWeight + c.RiskFactorWeight
}

// SharpConfig holds the sharp odds model constants
type SharpConfig struct {
	Margin              float64 `mapstructure:"margin" validate:"gte=0,lt=1"`
	SharpMoneyThreshold float64 `mapstructure:"sharp_money_threshold" validate:"gte=0,lte=1"`
	SharpAdjustment     float64 `mapstructure:"sharp_adjustment" validate:"gte=0,lt=1"`
	LineMovementWeight  float64 `mapstructure:"line_movement_weight" validate:"gte=0,lt=1"`
	SentinelOdds        float64 `mapstructure:"sentinel_odds" validate:"required,gt=1"`
}

// ValueConfig holds the value-bet edge thresholds
type ValueConfig struct {
	EdgeThreshold     float64 `mapstructure:"edge_threshold" validate:"gt=0"`
	HighEdgeThreshold float64 `mapstructure:"high_edge_threshold" validate:"gt=0"`
}

// CacheConfig represents the prediction response cache
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" validate:"required,gt=0"`
	MaxSize    int  `mapstructure:"max_size" validate:"required,gt=0"`
}

// TTL returns the cache entry lifetime
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RateLimitConfig represents per-client sliding window limits
type RateLimitConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Requests      int    `mapstructure:"requests" validate:"required,gt=0"`
	WindowSeconds int    `mapstructure:"window_seconds" validate:"required,gt=0"`
	Backend       string `mapstructure:"backend" validate:"required,oneof=memory redis"`
}

// Window returns the sliding window length
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// RedisConfig represents the shared rate limit store
type RedisConfig struct {
	Address   string   `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DatabaseConfig represents the optional prediction audit store
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           int    `mapstructure:"port" validate:"required_if=Enabled true,gte=0,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// RetrainingConfig represents scheduled synthetic retraining
type RetrainingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"omitempty,cron"`
	Samples  int    `mapstructure:"samples" validate:"gte=0"`
}

// SecretsConfig represents the AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return c.Database.DSN()
}

// DSN returns the PostgreSQL connection URL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
}

// AllowedOrigins returns the CORS origins for the current environment
func (c *Config) AllowedOrigins() []string {
	if c.IsProduction() && c.Server.FrontendURL != "" {
		return []string{c.Server.FrontendURL}
	}
	return []string{"*"}
}

// TrustedProxyNetworks parses the proxy CIDRs whose X-Forwarded-For header is honoured.
// Unparseable entries are skipped; Validate rejects them at load time.
func (c *Config) TrustedProxyNetworks() []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(c.Server.TrustedProxies))
	for _, cidr := range c.Server.TrustedProxies {
		if _, n, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}
