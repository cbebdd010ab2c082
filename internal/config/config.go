package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the API server.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Log       LogConfig
	Auth      AuthConfig
	Generator GeneratorConfig
	Tokens    TokensConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"planner_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// AuthConfig holds bearer token validation settings.
// Tokens are issued by the identity provider and signed with JWTSecret (HS256).
type AuthConfig struct {
	JWTSecret string `envconfig:"AUTH_JWT_SECRET" default:"dev-secret-change-me"` // CHANGE IN PRODUCTION
	AdminKey  string `envconfig:"AUTH_ADMIN_KEY" default:""`                      // empty disables coupon admin routes
}

// GeneratorConfig configures the OpenAI-compatible idea generator.
type GeneratorConfig struct {
	APIURL        string        `envconfig:"GENERATOR_API_URL" default:"https://api.openai.com/v1"`
	APIKey        string        `envconfig:"GENERATOR_API_KEY" default:""`
	Model         string        `envconfig:"GENERATOR_MODEL" default:"gpt-4o-mini"`
	Timeout       time.Duration `envconfig:"GENERATOR_TIMEOUT" default:"60s"`
	IdeaCount     int           `envconfig:"GENERATOR_IDEA_COUNT" default:"6"`
	BreakerWindow uint          `envconfig:"GENERATOR_BREAKER_WINDOW" default:"10"`
	BreakerDelay  time.Duration `envconfig:"GENERATOR_BREAKER_DELAY" default:"15s"`
}

// TokensConfig holds token ledger policy.
type TokensConfig struct {
	InitialGrant int `envconfig:"TOKENS_INITIAL_GRANT" default:"5"`
}

// Load parses environment variables into the Config struct.
// An optional .env file in the working directory is loaded first;
// variables already present in the environment win.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ClientConfig holds configuration for the planner CLI.
type ClientConfig struct {
	URL       string        `envconfig:"PLANNER_URL" default:"http://localhost:3000"`
	Token     string        `envconfig:"PLANNER_TOKEN" default:""`
	JWTSecret string        `envconfig:"PLANNER_JWT_SECRET" default:""` // mint a dev token when Token is empty
	UserID    string        `envconfig:"PLANNER_USER" default:""`
	AdminKey  string        `envconfig:"PLANNER_ADMIN_KEY" default:""`
	Timeout   time.Duration `envconfig:"PLANNER_TIMEOUT" default:"90s"`
	Log       LogConfig
}

// LoadClient parses environment variables into a ClientConfig.
func LoadClient() (*ClientConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
