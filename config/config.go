package config

import (
	"os"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	OpenAI   OpenAIConfig
	Resend   ResendConfig
	Nudge    NudgeConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// AuthConfig holds the shared secret the web frontend sends in x-api-secret.
type AuthConfig struct {
	APISecret string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type ResendConfig struct {
	APIKey      string
	FromName    string
	FromAddress string
	ReplyTo     string
}

type NudgeConfig struct {
	Interval       time.Duration
	EventQueueSize int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         envOr("PORT", "8080"),
			Env:          envOr("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             envOr("DATABASE_DSN", "tripscout:tripscout@tcp(localhost:3306)/tripscout?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Auth: AuthConfig{
			APISecret: envOr("API_SECRET", "change-me-in-production"),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  envOr("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Resend: ResendConfig{
			APIKey:      os.Getenv("RESEND_API_KEY"),
			FromName:    envOr("EMAIL_FROM_NAME", "TripScout"),
			FromAddress: envOr("EMAIL_FROM_ADDRESS", "noreply@tripscout.app"),
			ReplyTo:     os.Getenv("EMAIL_REPLY_TO"),
		},
		Nudge: NudgeConfig{
			Interval:       time.Hour,
			EventQueueSize: 64,
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
