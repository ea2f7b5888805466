// Package config loads cessadesk settings from defaults, an optional YAML
// file, a .env file and CESSA_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/cessadesk/cessadesk/internal/errs"
)

const EnvPrefix = "CESSA"

// DevJWTSecret is the fallback signing key. Serving with it logs a warning.
const DevJWTSecret = "cessadesk-dev-secret-change-me"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Storage StorageConfig `mapstructure:"storage"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Intake  IntakeConfig  `mapstructure:"intake"`
	Events  EventsConfig  `mapstructure:"events"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// PublicURL is the externally reachable base, used for /files links.
	PublicURL    string        `mapstructure:"public_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type BackendConfig struct {
	Driver      string      `mapstructure:"driver"`
	DatabaseURL string      `mapstructure:"database_url"`
	OxiDB       OxiDBConfig `mapstructure:"oxidb"`
}

type OxiDBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	PoolSize int    `mapstructure:"pool_size"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	PathStyle     bool   `mapstructure:"path_style"`
}

type AuthConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	SuperadminUser     string        `mapstructure:"superadmin_user"`
	SuperadminPassword string        `mapstructure:"superadmin_password"`
}

type IntakeConfig struct {
	Catalog     string `mapstructure:"catalog"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LoggingConfig struct {
	GelfAddr string `mapstructure:"gelf_addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")

	v.SetDefault("backend.driver", "sqlite")
	v.SetDefault("backend.database_url", "file:cessadesk.db?_pragma=foreign_keys(1)")
	v.SetDefault("backend.oxidb.host", "127.0.0.1")
	v.SetDefault("backend.oxidb.port", 4444)
	v.SetDefault("backend.oxidb.pool_size", 3)

	v.SetDefault("storage.driver", "oxidb")
	v.SetDefault("storage.bucket", "cessation_documents")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.path_style", true)

	v.SetDefault("auth.jwt_secret", DevJWTSecret)
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.superadmin_user", "admin")
	v.SetDefault("auth.superadmin_password", "")

	v.SetDefault("intake.catalog", "default")
	v.SetDefault("intake.max_upload_mb", 25)

	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "cessadesk.events")

	v.SetDefault("logging.gelf_addr", "")
}

// Load reads configuration. configPath may be empty, in which case
// ./cessadesk.yaml is used when present. envFiles default to ".env";
// missing env files are ignored.
func Load(configPath string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("cessadesk")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Events.Brokers = splitList(cfg.Events.Brokers)
	return &cfg, nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Validate reports the first setting that keeps the server from starting.
func (c *Config) Validate() error {
	switch c.Backend.Driver {
	case "postgres":
		if c.Backend.DatabaseURL == "" {
			return missing("backend.database_url", "postgres backend database url is not set")
		}
	case "sqlite":
		if c.Backend.DatabaseURL == "" {
			return missing("backend.database_url", "sqlite database path is not set")
		}
	case "oxidb":
		if err := c.validateOxiDB(); err != nil {
			return err
		}
	default:
		return errs.Config(
			fmt.Sprintf("unknown backend driver %q", c.Backend.Driver),
			"set "+EnvName("backend.driver")+" to postgres, sqlite or oxidb",
		)
	}

	switch c.Storage.Driver {
	case "s3":
		if c.Storage.Bucket == "" {
			return missing("storage.bucket", "storage bucket is not set")
		}
		if c.Storage.AccessKey == "" {
			return missing("storage.access_key", "storage access key is not set")
		}
		if c.Storage.SecretKey == "" {
			return missing("storage.secret_key", "storage secret key is not set")
		}
	case "oxidb":
		if err := c.validateOxiDB(); err != nil {
			return err
		}
		if c.Server.PublicURL == "" {
			return missing("server.public_url", "public url is required to link oxidb blobs")
		}
	default:
		return errs.Config(
			fmt.Sprintf("unknown storage driver %q", c.Storage.Driver),
			"set "+EnvName("storage.driver")+" to s3 or oxidb",
		)
	}

	if c.Auth.JWTSecret == "" {
		return missing("auth.jwt_secret", "token signing secret is not set")
	}
	if c.Auth.TokenTTL <= 0 {
		return errs.Config("token ttl must be positive", "set "+EnvName("auth.token_ttl")+", e.g. 12h")
	}
	if c.Intake.MaxUploadMB <= 0 {
		return errs.Config("max upload size must be positive", "set "+EnvName("intake.max_upload_mb"))
	}
	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		return missing("events.topic", "event topic is not set")
	}
	return nil
}

func (c *Config) validateOxiDB() error {
	if c.Backend.OxiDB.Host == "" {
		return missing("backend.oxidb.host", "oxidb host is not set")
	}
	if c.Backend.OxiDB.Port <= 0 {
		return missing("backend.oxidb.port", "oxidb port is not set")
	}
	return nil
}

// UsesOxiDB reports whether any backend needs an OxiDB connection pool.
func (c *Config) UsesOxiDB() bool {
	return c.Backend.Driver == "oxidb" || c.Storage.Driver == "oxidb"
}

func missing(key, msg string) error {
	return errs.Config(msg, "set "+EnvName(key))
}

// splitList accepts both YAML lists and a single comma-separated value.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
