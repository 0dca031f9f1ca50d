package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration. Every field comes from the
// environment so main stays lean and deployments stay twelve-factor.
type Server struct {
	Addr        string
	DatabaseURL string
	Redis       Redis

	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	BcryptCost int

	// AdminEmail and AdminPassword seed the first admin account on startup.
	// Both must be set; an empty pair disables seeding.
	AdminEmail    string
	AdminPassword string

	LogLevel string
}

// Redis holds the optional Redis connection settings. An empty URL disables
// Redis and the service falls back to in-process coordination.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := getenv("GIFTEX_ADDR", ":8080")

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getenvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getenvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getenvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getenvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     getenv("JWT_ISSUER", "giftex"),
		TokenTTL:      getenvDuration("TOKEN_TTL", 12*time.Hour),
		BcryptCost:    getenvInt("BCRYPT_COST", 12),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
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

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
