package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for HomeHub Core.
// Values come from defaults, an optional YAML file, an optional .env file,
// and environment variables, in that order of precedence (lowest first).
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Auth     AuthConfig     `yaml:"auth"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// AuthConfig contains the session token keys and password hashing settings.
type AuthConfig struct {
	AccessToken  TokenConfig    `yaml:"access_token"`
	RefreshToken TokenConfig    `yaml:"refresh_token"`
	Password     PasswordConfig `yaml:"password"`
}

// TokenConfig holds one token scope's key pair and lifetime.
// Keys are PEM blocks, either verbatim or base64-encoded.
type TokenConfig struct {
	PrivateKey string `yaml:"private_key"`
	PublicKey  string `yaml:"public_key"`
	MaxAge     int    `yaml:"max_age"` // seconds
}

// Lifetime returns MaxAge as a Duration.
func (t TokenConfig) Lifetime() time.Duration {
	return time.Duration(t.MaxAge) * time.Second
}

// PasswordConfig contains Argon2id parameters.
type PasswordConfig struct {
	MemoryKiB     uint32 `yaml:"memory_kib"`
	Iterations    uint32 `yaml:"iterations"`
	Parallelism   uint8  `yaml:"parallelism"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// InfluxDBConfig contains InfluxDB connection settings for light state history.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load builds the configuration.
//
// The loading order is:
//  1. Default values
//  2. YAML file values (skipped when path is empty)
//  3. .env file (HOMEHUB_ENV_FILE, or ./.env when present); never overrides
//     variables already set in the process environment
//  4. Environment variables
//
// The result is validated before it is returned.
func Load(path string) (*Config, error) {
	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Parse builds the configuration like Load but does not validate it.
// Commands that only touch the database use it so they run without keys.
func Parse(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	return cfg, nil
}

// defaultEnvFile is loaded when present and HOMEHUB_ENV_FILE is unset.
const defaultEnvFile = ".env"

func loadDotEnv() error {
	if path := os.Getenv("HOMEHUB_ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(defaultEnvFile); err != nil {
		return nil //nolint:nilerr // a missing .env is normal
	}
	if err := godotenv.Load(defaultEnvFile); err != nil {
		return fmt.Errorf("loading env file %s: %w", defaultEnvFile, err)
	}
	return nil
}

// defaultConfig returns a Config with sensible defaults.
// Token keys have no default and must be supplied.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/homehub.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 3000,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Auth: AuthConfig{
			AccessToken:  TokenConfig{MaxAge: 15 * 60},
			RefreshToken: TokenConfig{MaxAge: 7 * 24 * 60 * 60},
			Password: PasswordConfig{
				MemoryKiB:     64 * 1024,
				Iterations:    3,
				Parallelism:   1,
				MaxConcurrent: 4,
			},
		},
		InfluxDB: InfluxDBConfig{
			Bucket:        "homehub",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides.
// HOMEHUB_SECTION_KEY names take precedence over the legacy unprefixed names.
func applyEnvOverrides(cfg *Config) error {
	setString := func(dst *string, names ...string) {
		for _, name := range names {
			if v := os.Getenv(name); v != "" {
				*dst = v
				return
			}
		}
	}

	var errs []error
	setInt := func(dst *int, names ...string) {
		for _, name := range names {
			v := os.Getenv(name)
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not an integer", name, v))
				return
			}
			*dst = n
			return
		}
	}

	// Database
	if v := os.Getenv("HOMEHUB_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.Path = databasePathFromURL(v)
	}

	// API
	setString(&cfg.API.Host, "HOMEHUB_API_HOST")
	setInt(&cfg.API.Port, "HOMEHUB_API_PORT")

	// Auth keys and lifetimes
	setString(&cfg.Auth.AccessToken.PrivateKey, "HOMEHUB_ACCESS_TOKEN_PRIVATE_KEY", "ACCESS_TOKEN_PRIVATE_KEY")
	setString(&cfg.Auth.AccessToken.PublicKey, "HOMEHUB_ACCESS_TOKEN_PUBLIC_KEY", "ACCESS_TOKEN_PUBLIC_KEY")
	setString(&cfg.Auth.RefreshToken.PrivateKey, "HOMEHUB_REFRESH_TOKEN_PRIVATE_KEY", "REFRESH_TOKEN_PRIVATE_KEY")
	setString(&cfg.Auth.RefreshToken.PublicKey, "HOMEHUB_REFRESH_TOKEN_PUBLIC_KEY", "REFRESH_TOKEN_PUBLIC_KEY")
	setInt(&cfg.Auth.AccessToken.MaxAge, "HOMEHUB_ACCESS_TOKEN_MAX_AGE", "ACCESS_TOKEN_MAX_AGE")
	setInt(&cfg.Auth.RefreshToken.MaxAge, "HOMEHUB_REFRESH_TOKEN_MAX_AGE", "REFRESH_TOKEN_MAX_AGE")

	// InfluxDB
	setString(&cfg.InfluxDB.URL, "HOMEHUB_INFLUXDB_URL")
	setString(&cfg.InfluxDB.Token, "HOMEHUB_INFLUXDB_TOKEN")

	// Logging
	setString(&cfg.Logging.Level, "HOMEHUB_LOG_LEVEL")
	setString(&cfg.Logging.Format, "HOMEHUB_LOG_FORMAT")

	return errors.Join(errs...)
}

// databasePathFromURL turns a sqlite connection URL into a file path.
// "sqlite://data/hub.db?mode=rwc" -> "data/hub.db"
func databasePathFromURL(url string) string {
	for _, prefix := range []string{"sqlite://", "sqlite:", "file:"} {
		if strings.HasPrefix(url, prefix) {
			url = strings.TrimPrefix(url, prefix)
			break
		}
	}
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	return url
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required (set DATABASE_URL or HOMEHUB_DATABASE_PATH)")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.TLS.Enabled && (c.API.TLS.CertFile == "" || c.API.TLS.KeyFile == "") {
		errs = append(errs, "api.tls.cert_file and api.tls.key_file are required when TLS is enabled")
	}

	errs = append(errs, c.Auth.AccessToken.validate("auth.access_token", "ACCESS_TOKEN")...)
	errs = append(errs, c.Auth.RefreshToken.validate("auth.refresh_token", "REFRESH_TOKEN")...)

	// A shared key pair would let one scope's tokens pass the other's verifier.
	if c.Auth.AccessToken.PrivateKey != "" && c.Auth.AccessToken.PrivateKey == c.Auth.RefreshToken.PrivateKey {
		errs = append(errs, "auth.access_token and auth.refresh_token must use different key pairs")
	}

	if c.Auth.Password.MemoryKiB == 0 || c.Auth.Password.Iterations == 0 || c.Auth.Password.Parallelism == 0 {
		errs = append(errs, "auth.password memory_kib, iterations and parallelism must be positive")
	}
	if c.Auth.Password.MaxConcurrent < 1 {
		errs = append(errs, "auth.password.max_concurrent must be at least 1")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (t TokenConfig) validate(section, env string) []string {
	var errs []string
	if t.PrivateKey == "" {
		errs = append(errs, fmt.Sprintf("%s.private_key is required (set %s_PRIVATE_KEY)", section, env))
	}
	if t.PublicKey == "" {
		errs = append(errs, fmt.Sprintf("%s.public_key is required (set %s_PUBLIC_KEY)", section, env))
	}
	if t.MaxAge <= 0 {
		errs = append(errs, fmt.Sprintf("%s.max_age must be a positive number of seconds", section))
	}
	return errs
}

// ReadTimeout returns the API read timeout as a Duration.
func (a APIConfig) ReadTimeout() time.Duration {
	return time.Duration(a.Timeouts.Read) * time.Second
}

// WriteTimeout returns the API write timeout as a Duration.
func (a APIConfig) WriteTimeout() time.Duration {
	return time.Duration(a.Timeouts.Write) * time.Second
}

// IdleTimeout returns the API idle timeout as a Duration.
func (a APIConfig) IdleTimeout() time.Duration {
	return time.Duration(a.Timeouts.Idle) * time.Second
}
