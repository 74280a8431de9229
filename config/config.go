package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs at startup. It is built once in
// main and handed to the injector; nothing reads the environment after that.
type Config struct {
	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	JWTSecret []byte
	BearerTTL time.Duration

	SessionTTL         time.Duration
	RememberSessionTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	Port string

	// BaseURL is the externally visible origin used when building auth links
	// that go out in mail.
	BaseURL string
	// HomeURL is where fully authenticated users are sent.
	HomeURL string
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          []byte(os.Getenv("JWT_SECRET")),
		BearerTTL:          time.Hour,
		SessionTTL:         24 * time.Hour,
		RememberSessionTTL: 30 * 24 * time.Hour,
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           587,
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		MailFrom:           envOr("MAIL_FROM", os.Getenv("SMTP_USERNAME")),
		Port:               envOr("PORT", "8080"),
		BaseURL:            envOr("BASE_URL", "http://localhost:8080"),
		HomeURL:            envOr("HOME_URL", "/"),
	}

	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", port, err)
		}
		cfg.SMTPPort = p
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
