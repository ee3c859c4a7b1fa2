package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort        string        `mapstructure:"APP_PORT"`
	DBDSN          string        `mapstructure:"DB_DSN"`
	MigrationURL   string        `mapstructure:"MIGRATION_URL"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTExpiresMin  int           `mapstructure:"JWT_EXPIRES_MIN"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CORSOrigins    string        `mapstructure:"CORS_ORIGINS"`

	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB"`
	RedisChannelPrefix string `mapstructure:"REDIS_CHANNEL_PREFIX"`

	GoogleClientID  string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleSecret    string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirect  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL string `mapstructure:"FRONTEND_BASE_URL"`

	OTelEndpoint    string `mapstructure:"OTEL_ENDPOINT"`
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

var defaults = map[string]any{
	"APP_PORT":             "8080",
	"DB_DSN":               "",
	"MIGRATION_URL":        "",
	"JWT_SECRET":           "",
	"JWT_EXPIRES_MIN":      10080,
	"REQUEST_TIMEOUT":      5 * time.Second,
	"CORS_ORIGINS":         "http://127.0.0.1:3000, http://localhost:3000",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"REDIS_CHANNEL_PREFIX": "marketplace:",
	"GOOGLE_CLIENT_ID":     "",
	"GOOGLE_CLIENT_SECRET": "",
	"GOOGLE_REDIRECT_URL":  "",
	"FRONTEND_BASE_URL":    "http://localhost:3000",
	"OTEL_ENDPOINT":        "",
	"OTEL_SERVICE_NAME":    "freelance-api",
}

// Load reads configuration from the environment, optionally overlaid on an
// app.env file found in path.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read app.env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var missing []string
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing env: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleSecret != "" && c.GoogleRedirect != ""
}
