package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type AuthConfig struct {
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

type Config struct {
	Port      string         `yaml:"port"`
	Timezone  string         `yaml:"timezone"`
	SecretKey string         `yaml:"secret_key"`
	SweepHour int            `yaml:"sweep_hour"`
	Database  DatabaseConfig `yaml:"database"`
	Redis     RedisConfig    `yaml:"redis"`
	LLM       LLMConfig      `yaml:"llm"`
	Log       LogConfig      `yaml:"log"`
	Auth      AuthConfig     `yaml:"auth"`
}

func Default() *Config {
	return &Config{
		Port:      "8080",
		Timezone:  "UTC",
		SweepHour: 0,
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join("data", "glowlog.db"),
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		LLM: LLMConfig{
			Model:   "gpt-4o-mini",
			Timeout: "30s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			AccessTokenTTL:  "15m",
			RefreshTokenTTL: "336h",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE and then environment variables, in that order.
func Load() (*Config, error) {
	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (cfg *Config) applyEnvOverrides() error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Timezone = getEnv("TZ", cfg.Timezone)
	cfg.SecretKey = getEnv("SECRET_KEY", cfg.SecretKey)
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.Timeout = getEnv("LLM_TIMEOUT", cfg.LLM.Timeout)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
	cfg.Auth.AccessTokenTTL = getEnv("ACCESS_TOKEN_TTL", cfg.Auth.AccessTokenTTL)
	cfg.Auth.RefreshTokenTTL = getEnv("REFRESH_TOKEN_TTL", cfg.Auth.RefreshTokenTTL)

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q", raw)
		}
		cfg.Redis.DB = value
	}
	if raw := os.Getenv("SWEEP_HOUR"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid SWEEP_HOUR %q", raw)
		}
		cfg.SweepHour = value
	}
	return nil
}

func (cfg *Config) Validate() error {
	port, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q", cfg.Port)
	}
	if cfg.SweepHour < 0 || cfg.SweepHour > 23 {
		return fmt.Errorf("invalid sweep hour %d", cfg.SweepHour)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Database.Driver)) {
	case "sqlite":
		if strings.TrimSpace(cfg.Database.Path) == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case "postgres":
		if strings.TrimSpace(cfg.Database.URL) == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	for name, raw := range map[string]string{
		"LLM_TIMEOUT":       cfg.LLM.Timeout,
		"ACCESS_TOKEN_TTL":  cfg.Auth.AccessTokenTTL,
		"REFRESH_TOKEN_TTL": cfg.Auth.RefreshTokenTTL,
	} {
		if _, err := parsePositiveDuration(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// ResolveSecretKey rejects empty, placeholder and short signing keys.
func (cfg *Config) ResolveSecretKey() ([]byte, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return nil, errors.New("SECRET_KEY uses an insecure placeholder")
	}
	if len(secret) < minSecretKeyLength {
		return nil, fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return []byte(secret), nil
}

// Location falls back to UTC when the zone is unknown.
func (cfg *Config) Location() (*time.Location, bool) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return time.UTC, false
	}
	return location, true
}

func (cfg *Config) LLMEnabled() bool {
	return strings.TrimSpace(cfg.LLM.BaseURL) != ""
}

func (cfg *Config) LLMTimeout() time.Duration {
	value, _ := parsePositiveDuration(cfg.LLM.Timeout)
	return value
}

func (cfg *Config) AccessTokenTTL() time.Duration {
	value, _ := parsePositiveDuration(cfg.Auth.AccessTokenTTL)
	return value
}

func (cfg *Config) RefreshTokenTTL() time.Duration {
	value, _ := parsePositiveDuration(cfg.Auth.RefreshTokenTTL)
	return value
}

func parsePositiveDuration(raw string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", raw)
	}
	return value, nil
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
