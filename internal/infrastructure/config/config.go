package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	// DevelopmentSecret is only ever used when ENV=development is set explicitly
	// and SECRET_KEY is unset. An unset ENV means production.
	DevelopmentSecret = "insecure-development-secret"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=production"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth    AuthConfig
	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Audit   AuditConfig
}

type AuthConfig struct {
	SecretKey                string `env:"SECRET_KEY"`
	Algorithm                string `env:"ALGORITHM,                   default=HS256"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES, default=30"`
	PasswordAlgorithm        string `env:"PASSWORD_ALGORITHM,          default=bcrypt"`
	BcryptCost               int    `env:"BCRYPT_COST,                 default=10"`
}

// AccessTokenTTL is the lifetime of issued access tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER, default=sqlite"`
	DatabaseURL string `env:"DATABASE_URL,   default=file:projects.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=project_registry"`
	// Transactions need a replica set; standalone servers run WithTx without one.
	Transactions bool `env:"MONGO_TRANSACTIONS, default=false"`
}

type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED,     default=false"`
	Addr     string        `env:"REDIS_ADDR,        default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,          default=0"`
	CacheTTL time.Duration `env:"PROJECT_CACHE_TTL, default=30s"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC, default=project_events"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsDevelopment reports whether insecure local defaults are allowed. Only an
// explicit ENV=development enables them.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

// Load reads an optional .env file and then the process environment.
// A missing .env is not an error.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes configuration from an arbitrary lookuper. Tests use
// envconfig.MapLookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if cfg.Auth.SecretKey == "" && cfg.IsDevelopment() {
		cfg.Auth.SecretKey = DevelopmentSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required outside development"))
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("ALGORITHM %q not supported", c.Auth.Algorithm))
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	switch c.Auth.PasswordAlgorithm {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_ALGORITHM %q not supported", c.Auth.PasswordAlgorithm))
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for SQL storage"))
		}
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			errs = append(errs, errors.New("MONGO_URI and MONGO_DB are required for mongo storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q not supported", c.Storage.Driver))
	}

	if c.Audit.Workers <= 0 {
		errs = append(errs, errors.New("AUDIT_WORKERS must be positive"))
	}

	return errors.Join(errs...)
}
