package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultUsername  = "admin"
	defaultPassword  = "admin"
	defaultSecretKey = "development-secret-key"
)

type Config struct {
	Addr        string
	Environment string
	DatabaseURL string

	AdminUsername string
	AdminPassword string

	SecretKey      string
	SecureCookies  bool
	SessionMaxAge  time.Duration
	defaultedCreds bool
	defaultedKey   bool
}

// loadConfig reads the optional dotenv file at path into the process
// environment and resolves every setting from it, falling back to defaults.
func loadConfig(path string) (Config, error) {
	if path != "" {
		// A missing .env is normal outside of local development.
		_ = godotenv.Load(path)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DATABASE_URL", "flaskr.db")
	v.SetDefault("ADMIN_USERNAME", defaultUsername)
	v.SetDefault("ADMIN_PASSWORD", defaultPassword)
	v.SetDefault("SECRET_KEY", defaultSecretKey)
	v.SetDefault("SECURE_COOKIES", false)
	v.SetDefault("SESSION_MAX_AGE", 24*time.Hour)

	cfg := Config{
		Addr:          v.GetString("ADDR"),
		Environment:   v.GetString("ENVIRONMENT"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		SecretKey:     v.GetString("SECRET_KEY"),
		SecureCookies: v.GetBool("SECURE_COOKIES"),
		SessionMaxAge: v.GetDuration("SESSION_MAX_AGE"),
	}
	cfg.defaultedCreds = cfg.AdminPassword == defaultPassword
	cfg.defaultedKey = cfg.SecretKey == defaultSecretKey

	if cfg.AdminUsername == "" {
		return Config{}, fmt.Errorf("ADMIN_USERNAME must not be empty")
	}
	if cfg.SecretKey == "" {
		return Config{}, fmt.Errorf("SECRET_KEY must not be empty")
	}
	if cfg.SessionMaxAge <= 0 {
		return Config{}, fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", cfg.SessionMaxAge)
	}

	return cfg, nil
}

// warnings lists the insecure defaults still in effect.
func (c Config) warnings() []string {
	var out []string
	if c.defaultedCreds {
		out = append(out, "default admin password in use, set ADMIN_PASSWORD")
	}
	if c.defaultedKey {
		out = append(out, "development SECRET_KEY in use, sessions are signed with a well-known key")
	}
	return out
}
