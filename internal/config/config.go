package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MinSecretLength is the shortest HMAC secret accepted at startup.
const MinSecretLength = 32

var (
	// ErrMissingSecret is returned when AUTH_JWT_SECRET is not set.
	ErrMissingSecret = errors.New("AUTH_JWT_SECRET is required")
	// ErrWeakSecret is returned when AUTH_JWT_SECRET is shorter than MinSecretLength.
	ErrWeakSecret = fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", MinSecretLength)
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Seed     SeedConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values. An empty DSN keeps identities in memory.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr keeps revocations in memory.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret              string
	AccessTokenTTLMinutes  int
	ClockSkewSeconds       int
	BcryptCost             int
	RevocationSweepSeconds int
	RevocationShards       int
}

// SeedConfig describes the identity created at bootstrap.
type SeedConfig struct {
	Enabled  bool
	Username string
	Password string
	Role     string
}

// GatewayConfig configures the gateway binary that delegates to the auth service.
type GatewayConfig struct {
	Host                  string
	Port                  string
	AuthServiceURL        string
	RequestTimeoutSeconds int
	Logger                LoggerConfig
}

// Load reads configuration from environment variables, applying defaults where possible.
// A missing or short signing secret is a fatal misconfiguration.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "auth-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "auth:revoked:"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes:  getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			ClockSkewSeconds:       getEnvAsInt("AUTH_CLOCK_SKEW_SECONDS", 0),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 12),
			RevocationSweepSeconds: getEnvAsInt("AUTH_REVOCATION_SWEEP_SECONDS", 60),
			RevocationShards:       getEnvAsInt("AUTH_REVOCATION_SHARDS", 16),
		},
		Seed: SeedConfig{
			Enabled:  getEnvAsBool("AUTH_SEED_ENABLED", true),
			Username: getEnv("AUTH_SEED_USERNAME", "admin"),
			Password: getEnv("AUTH_SEED_PASSWORD", "password"),
			Role:     getEnv("AUTH_SEED_ROLE", "Admin"),
		},
	}

	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadGateway reads the gateway configuration.
func LoadGateway() (*GatewayConfig, error) {
	_ = godotenv.Load()

	cfg := &GatewayConfig{
		Host:                  getEnv("GATEWAY_HOST", "0.0.0.0"),
		Port:                  getEnv("GATEWAY_PORT", "8081"),
		AuthServiceURL:        getEnv("GATEWAY_AUTH_SERVICE_URL", "http://localhost:8080"),
		RequestTimeoutSeconds: getEnvAsInt("GATEWAY_REQUEST_TIMEOUT_SECONDS", 5),
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
	if cfg.AuthServiceURL == "" {
		return nil, errors.New("GATEWAY_AUTH_SERVICE_URL is required")
	}
	return cfg, nil
}

// Validate checks the auth settings that cannot be defaulted.
func (a AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return ErrMissingSecret
	}
	if len(a.JWTSecret) < MinSecretLength {
		return ErrWeakSecret
	}
	if a.AccessTokenTTLMinutes <= 0 {
		return fmt.Errorf("invalid AUTH_ACCESS_TOKEN_TTL_MINUTES: %d", a.AccessTokenTTLMinutes)
	}
	if a.ClockSkewSeconds < 0 {
		return fmt.Errorf("invalid AUTH_CLOCK_SKEW_SECONDS: %d", a.ClockSkewSeconds)
	}
	return nil
}

// AccessTokenTTL returns the lifespan of issued tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// ClockSkew returns the tolerated expiry skew.
func (a AuthConfig) ClockSkew() time.Duration {
	return time.Duration(a.ClockSkewSeconds) * time.Second
}

// RevocationSweepInterval returns how often dead revocations are purged; zero disables the sweep.
func (a AuthConfig) RevocationSweepInterval() time.Duration {
	if a.RevocationSweepSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RevocationSweepSeconds) * time.Second
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Addr returns the gateway bind address.
func (g GatewayConfig) Addr() string {
	return fmt.Sprintf("%s:%s", g.Host, g.Port)
}

// RequestTimeout bounds each call to the auth service.
func (g GatewayConfig) RequestTimeout() time.Duration {
	if g.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(g.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
