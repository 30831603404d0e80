package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the FéConecta sync service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	ScriptureBaseURL       string
	DailyMessageTTL        time.Duration
	FeedPageSize           int
	SearchDebounce         time.Duration
	OpenAIAPIKey           string
	AIModel                string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIConfigured reports whether the generative AI gateway has credentials.
// When false, AI-backed features degrade to explicit placeholder results.
func (c Config) AIConfigured() bool {
	return c.OpenAIAPIKey != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FECONECTA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "FeConecta Sync")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "feconecta/media")
	v.SetDefault("scripture.base_url", "https://bible-api.com")
	v.SetDefault("daily_message.ttl", "24h")
	v.SetDefault("feed.page_size", 10)
	v.SetDefault("search.debounce_ms", 300)
	v.SetDefault("ai.model", "gpt-4o-mini")

	ttlString := v.GetString("daily_message.ttl")
	if ttlString == "" {
		ttlString = "24h"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid daily message ttl: %w", err)
	}

	debounceMs := v.GetInt("search.debounce_ms")
	if debounceMs <= 0 {
		debounceMs = 300
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		ScriptureBaseURL:       v.GetString("scripture.base_url"),
		DailyMessageTTL:        ttl,
		FeedPageSize:           v.GetInt("feed.page_size"),
		SearchDebounce:         time.Duration(debounceMs) * time.Millisecond,
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		AIModel:                v.GetString("ai.model"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.FeedPageSize <= 0 {
		cfg.FeedPageSize = 10
	}

	return cfg, nil
}
