package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultDifyBaseURL = "https://api.dify.ai"
	DefaultDifyUser    = "webapp-user"
	DefaultDifyTimeout = 60 * time.Second
	DefaultCacheTTL    = 6 * time.Hour
)

// envBindings: variables de entorno documentadas por key de viper.
var envBindings = map[string][]string{
	"app.name":        {"APP_NAME"},
	"app.environment": {"APP_ENVIRONMENT"},
	"app.port":        {"PORT", "APP_PORT"},
	"dify.api_key":    {"DIFY_API_KEY"},
	"dify.base_url":   {"DIFY_BASE_URL"},
	"dify.user":       {"DIFY_USER"},
	"dify.timeout":    {"DIFY_TIMEOUT"},
	"database.dsn":    {"DB_DSN"},
	"redis.addr":      {"REDIS_ADDR"},
	"redis.password":  {"REDIS_PASSWORD"},
	"redis.db":        {"REDIS_DB"},
	"redis.ttl":       {"CACHE_TTL"},
	"logging.level":   {"LOG_LEVEL"},
	"logging.format":  {"LOG_FORMAT"},
}

// Load busca config.yaml en ./configs o el directorio actual (opcional),
// carga .env si existe y aplica overrides de entorno.
func Load() (*Config, error) {
	loadEnvFile(".env")

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	return build(v)
}

// LoadFromFile carga un archivo de configuración concreto (yaml).
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile(".env")

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "preop-drug-check")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("dify.base_url", DefaultDifyBaseURL)
	v.SetDefault("dify.user", DefaultDifyUser)
	v.SetDefault("dify.timeout", DefaultDifyTimeout)
	v.SetDefault("redis.ttl", DefaultCacheTTL)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func build(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func normalize(cfg *Config) {
	cfg.App.Port = strings.TrimPrefix(strings.TrimSpace(cfg.App.Port), ":")
	cfg.Dify.APIKey = strings.TrimSpace(cfg.Dify.APIKey)
	cfg.Dify.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Dify.BaseURL), "/")
	cfg.Dify.User = strings.TrimSpace(cfg.Dify.User)
	if cfg.Dify.User == "" {
		cfg.Dify.User = DefaultDifyUser
	}
	if cfg.Dify.Timeout <= 0 {
		cfg.Dify.Timeout = DefaultDifyTimeout
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
}

func validate(cfg *Config) error {
	if cfg.App.Port == "" {
		return errors.New("app.port is required")
	}
	u, err := url.ParseRequestURI(cfg.Dify.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("dify.base_url must be an http(s) url: %q", cfg.Dify.BaseURL)
	}
	if cfg.Redis.TTL < 0 {
		return errors.New("redis.ttl must not be negative")
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json: %q", cfg.Logging.Format)
	}
	return nil
}

// loadEnvFile no pisa variables ya presentes en el entorno.
func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}
