package config

import "time"

// Config es la configuración completa del servicio y del CLI.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Dify     DifyConfig     `mapstructure:"dify"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Port        string `mapstructure:"port"`
}

// DifyConfig describe el workflow remoto.
// APIKey puede quedar vacío: /api/config responde 503 y cada check falla sin llamar al workflow.
type DifyConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	User    string        `mapstructure:"user"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig: si DSN está vacío se usa historial in-memory.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig: si Addr está vacío no hay cache de resultados.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Addr devuelve ":<port>" para http.Server.
func (c Config) Addr() string {
	return ":" + c.App.Port
}
