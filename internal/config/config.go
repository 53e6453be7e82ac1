// Package config loads the server configuration from YAML with
// LOANLOCATOR_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"loanlocator/internal/auth"
	"loanlocator/internal/blob"
	"loanlocator/internal/core"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOANLOCATOR_"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StorageConfig selects the reference store driver
type StorageConfig struct {
	Driver        string `yaml:"driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	SeedLoans     string `yaml:"seed_loans"`
	SeedRanges    string `yaml:"seed_ranges"`
}

// BlobConfig configures the export archive. An empty driver disables archiving.
type BlobConfig struct {
	Driver string        `yaml:"driver"`
	FSRoot string        `yaml:"fs_root"`
	S3     blob.S3Config `yaml:"s3"`
}

// AuthConfig holds the admin password hash and session lifetime
type AuthConfig struct {
	PasswordHash string        `yaml:"password_hash"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the complete server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Blob    BlobConfig    `yaml:"blob"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// LoadConfig reads path (when non-empty), applies defaults and environment
// overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	setDefaults(&cfg)

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = string(core.StorageSQLite)
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "loanlocator.db"
	}
	if cfg.Storage.MongoDatabase == "" {
		cfg.Storage.MongoDatabase = "loanlocator"
	}

	if strings.EqualFold(cfg.Blob.Driver, string(blob.DriverFilesystem)) && cfg.Blob.FSRoot == "" {
		cfg.Blob.FSRoot = "./archives"
	}

	if cfg.Auth.PasswordHash == "" {
		cfg.Auth.PasswordHash = auth.DefaultPasswordHash
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = auth.DefaultSessionTTL
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("SERVER_ADDR", &cfg.Server.Addr)
	str("STORAGE_DRIVER", &cfg.Storage.Driver)
	str("SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("POSTGRES_DSN", &cfg.Storage.PostgresDSN)
	str("MONGO_URI", &cfg.Storage.MongoURI)
	str("MONGO_DATABASE", &cfg.Storage.MongoDatabase)
	str("SEED_LOANS", &cfg.Storage.SeedLoans)
	str("SEED_RANGES", &cfg.Storage.SeedRanges)
	str("BLOB_DRIVER", &cfg.Blob.Driver)
	str("BLOB_FS_ROOT", &cfg.Blob.FSRoot)
	str("BLOB_S3_BUCKET", &cfg.Blob.S3.Bucket)
	str("BLOB_S3_REGION", &cfg.Blob.S3.Region)
	str("BLOB_S3_ENDPOINT", &cfg.Blob.S3.Endpoint)
	str("BLOB_S3_ACCESS_KEY_ID", &cfg.Blob.S3.AccessKeyID)
	str("BLOB_S3_SECRET_ACCESS_KEY", &cfg.Blob.S3.SecretAccessKey)
	str("ADMIN_PASSWORD_HASH", &cfg.Auth.PasswordHash)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	if v, ok := lookup(EnvPrefix + "BLOB_S3_PATH_STYLE"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sBLOB_S3_PATH_STYLE: %w", EnvPrefix, err)
		}
		cfg.Blob.S3.PathStyle = b
	}
	for name, dst := range map[string]*time.Duration{
		"SERVER_READ_TIMEOUT":     &cfg.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    &cfg.Server.WriteTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": &cfg.Server.ShutdownTimeout,
		"SESSION_TTL":             &cfg.Auth.SessionTTL,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch core.StorageDriver(strings.ToLower(c.Storage.Driver)) {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres, core.StorageMongo:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch blob.Driver(strings.ToLower(c.Blob.Driver)) {
	case "", blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			return errors.New("blob.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return errors.New("server timeouts must not be negative")
	}
	if c.Auth.SessionTTL < 0 {
		return errors.New("auth.session_ttl must not be negative")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	return nil
}

// StorageOptions converts the storage section for core.OpenReferenceStore.
func (c *Config) StorageOptions() core.StorageOptions {
	return core.StorageOptions{
		Driver:        c.Storage.Driver,
		SQLitePath:    c.Storage.SQLitePath,
		PostgresDSN:   c.Storage.PostgresDSN,
		MongoURI:      c.Storage.MongoURI,
		MongoDatabase: c.Storage.MongoDatabase,
	}
}

// BlobEnabled reports whether an archive driver is configured.
func (c *Config) BlobEnabled() bool { return strings.TrimSpace(c.Blob.Driver) != "" }

// BlobOptions converts the blob section for blob.Open.
func (c *Config) BlobOptions() blob.Config {
	return blob.Config{Driver: c.Blob.Driver, FSRoot: c.Blob.FSRoot, S3: c.Blob.S3}
}
