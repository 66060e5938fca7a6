package auth

import (
	"os"
	"strconv"
	"time"

	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/auth/repo"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Secret   string
	TokenTTL time.Duration
	// Store selects where issued tokens are tracked for revocation.
	Store string
	Redis repo.RedisConfig
}

// ConfigFromEnv reads JWT_SECRET, ACCESS_TOKEN_TTL, TOKEN_STORE and REDIS_*.
func ConfigFromEnv() Config {
	ttl, err := time.ParseDuration(os.Getenv("ACCESS_TOKEN_TTL"))
	if err != nil || ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	store := os.Getenv("TOKEN_STORE")
	if store == "" {
		store = StorePostgres
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return Config{
		Secret:   os.Getenv("JWT_SECRET"),
		TokenTTL: ttl,
		Store:    store,
		Redis:    repo.RedisConfig{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: db},
	}
}
