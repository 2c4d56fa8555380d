package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for vitalbase
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Security  SecurityConfig  `mapstructure:"security"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StorageConfig holds database settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// SecurityConfig holds auth settings
type SecurityConfig struct {
	JWTSecret     string   `mapstructure:"jwt_secret"`
	TokenTTLHours int      `mapstructure:"token_ttl_hours"`
	AllowOrigins  []string `mapstructure:"allow_origins"`
}

// RateLimitConfig holds per-IP request limiting settings
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// RetentionConfig controls pruning of resolved access requests.
// Approved requests are kept forever; only denied ones age out.
type RetentionConfig struct {
	DeniedRequestDays    int `mapstructure:"denied_request_days"`
	CheckIntervalMinutes int `mapstructure:"check_interval_minutes"`
}

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.Set("storage.sqlite_path", filepath.Join(dataDir, "vitalbase.db"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "vitalbase.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (VITALBASE_SERVER_PORT, VITALBASE_SECURITY_JWT_SECRET, ...)
	v.SetEnvPrefix("VITALBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("security.token_ttl_hours", 168)
	v.SetDefault("security.allow_origins", []string{"*"})

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_second", 5.0)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("retention.denied_request_days", 90)
	v.SetDefault("retention.check_interval_minutes", 60)
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "vitalbase")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "vitalbase")
}

// loadEnvOverrides covers the handful of keys operators set most often
func loadEnvOverrides(cfg *Config) {
	getEnv := func(key, fallback string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		return fallback
	}

	cfg.Server.Address = getEnv("VITALBASE_SERVER_ADDRESS", cfg.Server.Address)
	if port := os.Getenv("VITALBASE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}

	cfg.Storage.DataDir = getEnv("VITALBASE_STORAGE_DATA_DIR", cfg.Storage.DataDir)
	cfg.Security.JWTSecret = getEnv("VITALBASE_SECURITY_JWT_SECRET", cfg.Security.JWTSecret)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if cfg.Security.TokenTTLHours <= 0 {
		return fmt.Errorf("security.token_ttl_hours must be positive")
	}

	if cfg.Retention.DeniedRequestDays <= 0 {
		return fmt.Errorf("retention.denied_request_days must be positive")
	}

	// Generate JWT secret if not provided
	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = generateRandomString(32)
	}

	return nil
}

func generateRandomString(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)[:n]
}
