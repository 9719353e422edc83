// Package config builds the process configuration once at startup. There is
// no package-level mutable state; the resulting struct is passed explicitly
// to every component that needs it.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"propvest/assets"
	"propvest/mailer"
)

// Config holds runtime settings for the propvest API server.
type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	CodeLength  int
	SMTP        mailer.Config
	S3          assets.Config
}

// Load reads configuration from the environment, with an optional .env
// overlay for local development.
func Load() *Config {
	// Best effort; production deployments set real environment variables.
	_ = godotenv.Load()

	return &Config{
		Addr:        getEnv("ADDR", ":4000"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CodeLength:  getEnvInt("VERIFICATION_CODE_LENGTH", 4),
		SMTP: mailer.Config{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		S3: assets.Config{
			AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			SecretKey:    getEnv("S3_SECRET_KEY", ""),
			Bucket:       getEnv("S3_BUCKET", "propvest-uploads"),
			Region:       getEnv("S3_REGION", "us-east-1"),
			BaseEndpoint: getEnv("S3_BASE_ENDPOINT", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
