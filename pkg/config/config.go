package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the client configuration loaded from env files and environment variables.
type Config struct {
	BaseURL            string        `mapstructure:"beer_api_base_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	UserAgent          string        `mapstructure:"user_agent"`
	LogLevel           string        `mapstructure:"log_level"`
	EndpointsFile      string        `mapstructure:"endpoints_file"`
	PublishersFile     string        `mapstructure:"publishers_file"`
}

const envFile = "configs/.env"

// Load reads configuration from configs/.env (when present) and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load(envFile)

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("beer_api_base_url", "https://api.springframework.guru")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("user_agent", "beer-catalog-client")
	v.SetDefault("log_level", "info")
	v.SetDefault("endpoints_file", "")
	v.SetDefault("publishers_file", "")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.EndpointsFile = strings.TrimSpace(cfg.EndpointsFile)
	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid beer_api_base_url %q (must be an absolute http(s) URL)", cfg.BaseURL)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	return &cfg, nil
}
