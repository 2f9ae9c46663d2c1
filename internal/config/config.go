package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "WEATHERVIEW"

type Config struct {
	Server     ServerConfig
	Log        LogConfig
	WeatherAPI WeatherAPIConfig
	App        AppConfig
	Auth       AuthConfig
}

type ServerConfig struct {
	Port    int
	GinMode string // debug, release, test
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

type WeatherAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type AppConfig struct {
	DefaultCity string
}

// AuthConfig maps client IDs to HMAC secrets for the /v1 API. Empty
// disables signature checks.
type AuthConfig struct {
	Clients map[string]string
	MaxAge  time.Duration
}

// Load reads .env (if any), then config.yaml (if any), then environment
// variables prefixed with WEATHERVIEW_.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	_ = v.BindEnv("weatherapi.apikey")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ginmode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("weatherapi.baseurl", "https://api.weatherapi.com")
	v.SetDefault("weatherapi.timeout", 10*time.Second)
	v.SetDefault("app.defaultcity", "Baku")
	v.SetDefault("auth.maxage", 5*time.Minute)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.WeatherAPI.APIKey) == "" {
		return fmt.Errorf("weatherapi.apikey is required (set %s_WEATHERAPI_APIKEY)", envPrefix)
	}
	if c.WeatherAPI.BaseURL == "" {
		return errors.New("weatherapi.baseurl is required")
	}
	if strings.TrimSpace(c.App.DefaultCity) == "" {
		return errors.New("app.defaultcity is required")
	}
	return nil
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.Log.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
