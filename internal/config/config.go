package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	ReadLimit  int64  `mapstructure:"read_limit"`
	Secret     string `mapstructure:"secret"`

	// Credentials the token builder signs with. Never logged.
	AppID          string `mapstructure:"app_id"`
	AppCertificate string `mapstructure:"app_certificate"`

	// Empty RedisAddr selects the in-memory presence store.
	RedisAddr    string        `mapstructure:"redis_addr"`
	HeartbeatTTL time.Duration `mapstructure:"heartbeat_ttl"`
	TokenExpiry  time.Duration `mapstructure:"token_expiry"`

	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("heartbeat_ttl", "60s")
	v.SetDefault("token_expiry", "1h")
	v.SetDefault("rate_limit", 30)
	v.SetDefault("rate_interval", "1m")

	_ = v.BindEnv("app_id", "APP_ID")
	_ = v.BindEnv("app_certificate", "APP_CERTIFICATE")
	_ = v.BindEnv("redis_addr", "REDIS_ADDR")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Bool("redis", cfg.RedisAddr != "").Msg("config ready")
	return &cfg, nil
}
