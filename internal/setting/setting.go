// Package setting assembles the process-wide settings from the environment once at startup.
package setting

import (
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/refine"
	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/utilities"
)

const defaultAddr = "0.0.0.0:8431"

var ErrMissingSecret = errors.New("JWT_SECRET is not set")

// Settings groups the per-package configs.
type Settings struct {
	Addr     string
	Log      utilities.Config
	Database database.Config
	Auth     auth.Config
	Refine   refine.Config
}

// Load reads a .env file if present and then the environment.
// A .env file never overrides variables that are already set.
func Load() (Settings, error) {
	// best-effort: if no .env exists, continue with the real env
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment without touching .env files.
func FromEnv() (Settings, error) {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = defaultAddr
	}
	s := Settings{
		Addr:     addr,
		Log:      utilities.ConfigFromEnv(),
		Database: database.ConfigFromEnv(),
		Auth:     auth.ConfigFromEnv(),
		Refine:   refine.ConfigFromEnv(),
	}
	return s, s.Validate()
}

// Validate rejects settings the server cannot start with.
func (s Settings) Validate() error {
	if s.Auth.Secret == "" {
		return ErrMissingSecret
	}
	switch s.Auth.Store {
	case auth.StorePostgres, auth.StoreRedis:
	default:
		return errors.New("TOKEN_STORE must be postgres or redis")
	}
	switch s.Refine.Provider {
	case refine.ProviderOpenAI, refine.ProviderGenAI:
	default:
		return errors.New("REFINE_PROVIDER must be openai or genai")
	}
	return nil
}
