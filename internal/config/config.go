package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/godilite/kpi-server/internal/kpi"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DBPath                string
	DBDriver              string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	RedisKeyPrefix        string
	GRPCPort              int
	GRPCReflectionEnabled bool
	GRPCLoggingEnabled    bool
	GRPCMaxConnectionIdle time.Duration
	CacheTTL              time.Duration
	TopN                  int
	ScoreWeightsFile      string
	ScoreWeights          kpi.ScoreWeights
}

// EnsureDataDir creates the directory holding a file-backed SQLite database.
func (c *Config) EnsureDataDir() error {
	if c.DBDriver != "sqlite3" || c.DBPath == "" || strings.HasPrefix(c.DBPath, ":memory:") || strings.HasPrefix(c.DBPath, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir for %s: %w", c.DBPath, err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables. Unparseable
// values fall back to their defaults. An unreadable weights file is an error.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DBPath:                getEnv("DB_PATH", "./data/kpi.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix:        getEnv("REDIS_KEY_PREFIX", "kpi:"),
		GRPCPort:              getEnvInt("GRPC_PORT", 50051),
		GRPCReflectionEnabled: getEnvBool("GRPC_REFLECTION_ENABLED", false),
		GRPCLoggingEnabled:    getEnvBool("GRPC_LOGGING_ENABLED", true),
		GRPCMaxConnectionIdle: getEnvDuration("GRPC_MAX_CONNECTION_IDLE", 5*time.Minute),
		CacheTTL:              getEnvDuration("CACHE_TTL", 10*time.Minute),
		TopN:                  getEnvInt("TOP_N", kpi.DefaultTopN),
		ScoreWeightsFile:      os.Getenv("SCORE_WEIGHTS_FILE"),
		ScoreWeights:          kpi.DefaultScoreWeights(),
	}

	if cfg.ScoreWeightsFile != "" {
		w, err := LoadWeightsFile(cfg.ScoreWeightsFile)
		if err != nil {
			return nil, err
		}
		cfg.ScoreWeights = w
	}
	applyWeightOverrides(&cfg.ScoreWeights)

	if cfg.TopN < 1 {
		cfg.TopN = kpi.DefaultTopN
	}

	return cfg, nil
}

// LoadWeightsFile reads score weights from a YAML document such as
//
//	hold: 0.05
//	wrap: 0.05
//	csat_behaviour: 0.25
//	csat_resolution: 0.25
//	auto_on: 0.40
//
// Keys left out keep their default weight.
func LoadWeightsFile(path string) (kpi.ScoreWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return kpi.ScoreWeights{}, fmt.Errorf("read weights file: %w", err)
	}

	w := kpi.DefaultScoreWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return kpi.ScoreWeights{}, fmt.Errorf("parse weights file %s: %w", path, err)
	}
	if err := validateWeights(w); err != nil {
		return kpi.ScoreWeights{}, fmt.Errorf("weights file %s: %w", path, err)
	}
	return w, nil
}

func validateWeights(w kpi.ScoreWeights) error {
	for name, v := range map[string]float64{
		"hold":            w.Hold,
		"wrap":            w.Wrap,
		"csat_behaviour":  w.CSATBehaviour,
		"csat_resolution": w.CSATResolution,
		"auto_on":         w.AutoOn,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative", name)
		}
	}
	return nil
}

func applyWeightOverrides(w *kpi.ScoreWeights) {
	w.Hold = getEnvWeight("SCORE_WEIGHT_HOLD", w.Hold)
	w.Wrap = getEnvWeight("SCORE_WEIGHT_WRAP", w.Wrap)
	w.CSATBehaviour = getEnvWeight("SCORE_WEIGHT_CSAT_BEHAVIOUR", w.CSATBehaviour)
	w.CSATResolution = getEnvWeight("SCORE_WEIGHT_CSAT_RESOLUTION", w.CSATResolution)
	w.AutoOn = getEnvWeight("SCORE_WEIGHT_AUTO_ON", w.AutoOn)
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvWeight(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
