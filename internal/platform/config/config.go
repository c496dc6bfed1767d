package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"zkid/pkg/validation"
)

// Server captures the issuance service configuration.
type Server struct {
	Addr            string        `validate:"required"`
	Environment     string        `validate:"oneof=development test production"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
	JWTSigningKey   string        `validate:"required,min=16"`
	JWTIssuer       string        `validate:"notblank"`
	JWTAudience     string        `validate:"notblank"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Verifier RemoteVerifierConfig
	Registry RegistryConfig
}

// DatabaseConfig selects PostgreSQL persistence. An empty URL keeps every
// store in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int `validate:"gt=0"`
	MaxIdleConns    int `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

// RedisConfig enables the verdict cache when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int `validate:"gt=0"`
	MinIdleConns int `validate:"gte=0"`
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	VerdictTTL   time.Duration `validate:"gt=0"`
}

// KafkaConfig enables the audit stream when Brokers is set.
type KafkaConfig struct {
	Brokers    string
	AuditTopic string `validate:"required_with=Brokers"`
}

// RemoteVerifierConfig registers the remote verifier capability when URL is set.
type RemoteVerifierConfig struct {
	URL     string        `validate:"omitempty,url"`
	APIKey  string
	Timeout time.Duration `validate:"gt=0"`
}

// RegistryConfig holds the metadata used when the built-in credential
// registry is initialized at startup. Startup initialization only runs when
// Owner is set.
type RegistryConfig struct {
	Owner   string
	Name    string `validate:"notblank"`
	Symbol  string `validate:"notblank,max=16"`
	BaseURI string `validate:"omitempty,url"`
}

// DefaultAudience is the audience of operator bearer tokens.
const DefaultAudience = "zkid-admin"

// TokenTTL is the default lifetime of operator bearer tokens.
var TokenTTL = 15 * time.Minute

// DevSigningKey signs tokens outside production when JWT_SIGNING_KEY is unset.
const DevSigningKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numbers and durations are reported rather than silently defaulted.
func FromEnv() (Server, error) {
	r := &envReader{}

	cfg := Server{
		Addr:            r.str("ZKID_ADDR", ":8080"),
		Environment:     r.str("ZKID_ENV", "development"),
		LogLevel:        r.str("LOG_LEVEL", "info"),
		JWTSigningKey:   os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:       r.str("JWT_ISSUER", "zkid"),
		JWTAudience:     r.str("JWT_AUDIENCE", DefaultAudience),
		ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    r.integer("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			VerdictTTL:   r.duration("VERDICT_CACHE_TTL", 10*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:    os.Getenv("KAFKA_BROKERS"),
			AuditTopic: r.str("AUDIT_TOPIC", "zkid.audit"),
		},
		Verifier: RemoteVerifierConfig{
			URL:     os.Getenv("VERIFIER_URL"),
			APIKey:  os.Getenv("VERIFIER_API_KEY"),
			Timeout: r.duration("VERIFIER_TIMEOUT", 5*time.Second),
		},
		Registry: RegistryConfig{
			Owner:   os.Getenv("REGISTRY_OWNER"),
			Name:    r.str("REGISTRY_NAME", "ZK Identity Credential"),
			Symbol:  r.str("REGISTRY_SYMBOL", "ZKID"),
			BaseURI: os.Getenv("REGISTRY_BASE_URI"),
		},
	}

	if cfg.JWTSigningKey == "" && cfg.Environment != "production" {
		// Use a default for development - production must set JWT_SIGNING_KEY
		cfg.JWTSigningKey = DevSigningKey
	}

	if err := r.err(); err != nil {
		return Server{}, err
	}
	if err := validation.Validate(cfg); err != nil {
		return Server{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// VerifierServer configures the standalone verifier service.
type VerifierServer struct {
	Addr            string `validate:"required"`
	Environment     string `validate:"oneof=development test production"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	APIKey          string
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// VerifierFromEnv builds the standalone verifier configuration.
func VerifierFromEnv() (VerifierServer, error) {
	r := &envReader{}
	cfg := VerifierServer{
		Addr:            r.str("VERIFIER_ADDR", ":8090"),
		Environment:     r.str("ZKID_ENV", "development"),
		LogLevel:        r.str("LOG_LEVEL", "info"),
		APIKey:          os.Getenv("VERIFIER_API_KEY"),
		ShutdownTimeout: r.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	if err := r.err(); err != nil {
		return VerifierServer{}, err
	}
	if cfg.Environment == "production" && cfg.APIKey == "" {
		return VerifierServer{}, errors.New("invalid configuration: VERIFIER_API_KEY is required in production")
	}
	if err := validation.Validate(cfg); err != nil {
		return VerifierServer{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type envReader struct {
	errs []error
}

func (r *envReader) str(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (r *envReader) integer(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
