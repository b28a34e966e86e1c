package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
	MaxCards           int      `mapstructure:"MAX_CARDS"`
	DedupBySummary     bool     `mapstructure:"DEDUP_BY_SUMMARY"`
	FHIRTimeoutSeconds int      `mapstructure:"FHIR_TIMEOUT_SECONDS"`
	RequestTimeoutSecs int      `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	CacheMaxAge        int      `mapstructure:"CACHE_MAX_AGE"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	AuthTokenSecret    string   `mapstructure:"AUTH_TOKEN_SECRET"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8090")
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MAX_CARDS", 10)
	v.SetDefault("DEDUP_BY_SUMMARY", false)
	v.SetDefault("FHIR_TIMEOUT_SECONDS", 10)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("CACHE_MAX_AGE", 300)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("MAX_CARDS")
	v.BindEnv("DEDUP_BY_SUMMARY")
	v.BindEnv("FHIR_TIMEOUT_SECONDS")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")
	v.BindEnv("CACHE_MAX_AGE")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("AUTH_TOKEN_SECRET")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.MaxCards <= 0 {
		return nil, fmt.Errorf("MAX_CARDS must be positive")
	}
	if cfg.FHIRTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("FHIR_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// AuthEnabled reports whether the inbound bearer-token gate should run.
// The decision core never enforces the EHR caller's authentication model;
// this only guards the deployment edge when a shared secret is configured.
func (c *Config) AuthEnabled() bool {
	return c.AuthTokenSecret != ""
}
