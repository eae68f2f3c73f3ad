package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Artifacts ArtifactConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Database  DatabaseConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
}

// LoggerConfig controls log output. A non-empty File adds rotated file output
// alongside stderr.
type LoggerConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type ArtifactConfig struct {
	Root         string
	CacheEnabled bool
	CacheSize    int
}

type AuthConfig struct {
	APIKey string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// NewViper returns a viper instance with defaults, environment lookup and the
// optional CONFIG_FILE applied. Commands bind their flags to it before FromViper.
func NewViper() (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("SERVER_MAX_BODY_BYTES", 1<<20)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("LOGGER_FILE", "")
	v.SetDefault("LOGGER_MAX_SIZE_MB", 100)
	v.SetDefault("LOGGER_MAX_BACKUPS", 3)
	v.SetDefault("LOGGER_MAX_AGE_DAYS", 28)
	v.SetDefault("ARTIFACT_ROOT", ".")
	v.SetDefault("ARTIFACT_CACHE_ENABLED", false)
	v.SetDefault("ARTIFACT_CACHE_SIZE", 8)
	v.SetDefault("AUTH_API_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DATABASE_ENABLED", false)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "sentiment")
	v.SetDefault("DATABASE_SSL_MODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	// Env
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	return v, nil
}

func Load() (*Config, error) {
	v, err := NewViper()
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			MaxBodyBytes:    v.GetInt64("SERVER_MAX_BODY_BYTES"),
		},
		Logger: LoggerConfig{
			Level:      v.GetString("LOGGER_LEVEL"),
			Format:     v.GetString("LOGGER_FORMAT"),
			File:       v.GetString("LOGGER_FILE"),
			MaxSizeMB:  v.GetInt("LOGGER_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOGGER_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOGGER_MAX_AGE_DAYS"),
		},
		Artifacts: ArtifactConfig{
			Root:         v.GetString("ARTIFACT_ROOT"),
			CacheEnabled: v.GetBool("ARTIFACT_CACHE_ENABLED"),
			CacheSize:    v.GetInt("ARTIFACT_CACHE_SIZE"),
		},
		Auth: AuthConfig{
			APIKey: v.GetString("AUTH_API_KEY"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetStringSlice("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DATABASE_ENABLED"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSL_MODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid SERVER_MAX_BODY_BYTES %d", c.Server.MaxBodyBytes)
	}
	if c.Artifacts.Root == "" {
		return fmt.Errorf("ARTIFACT_ROOT must not be empty")
	}
	if c.Artifacts.CacheEnabled && c.Artifacts.CacheSize <= 0 {
		return fmt.Errorf("invalid ARTIFACT_CACHE_SIZE %d", c.Artifacts.CacheSize)
	}
	return nil
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
