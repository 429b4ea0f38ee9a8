// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.eeviriyi/config.yaml, or ./config.yaml)
//  3. Default values
//
// Main categories:
//   - AI: chat model, embedder model
//   - Storage: PostgreSQL connection (see storage.go)
//   - Notify: ServerChan push key
//   - Content: posts directory, default locale
//   - Server: listen address
//
// Sensitive data (passwords, push keys) is never logged; MarshalJSON masks it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the chat model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")

	// ErrInvalidLocale indicates the default locale is not supported.
	ErrInvalidLocale = errors.New("invalid default locale")

	// ErrInvalidMaxTurns indicates the chat tool-loop bound is out of range.
	ErrInvalidMaxTurns = errors.New("invalid max turns")
)

// Default model configuration.
const (
	// DefaultChatModel powers the assistant's responses.
	DefaultChatModel = "gemini-2.5-pro"

	// DefaultEmbedderModel produces the knowledge-base vectors.
	// gemini-embedding-001 supports truncation to 1024 dimensions via
	// OutputDimensionality; the pgvector schema is fixed at 1024.
	DefaultEmbedderModel = "gemini-embedding-001"
)

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields, update MarshalJSON.
type Config struct {
	// AI model configuration
	ChatModel     string `mapstructure:"chat_model" json:"chat_model"`
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`
	MaxTurns      int    `mapstructure:"max_turns" json:"max_turns"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Notification configuration
	ServerChanKey string `mapstructure:"serverchan_key" json:"serverchan_key"` // SENSITIVE: masked in MarshalJSON

	// Content configuration
	PostsDir      string `mapstructure:"posts_dir" json:"posts_dir"`
	DefaultLocale string `mapstructure:"default_locale" json:"default_locale"`

	// Server configuration
	ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".eeviriyi")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL wins over individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	viper.SetDefault("chat_model", DefaultChatModel)
	viper.SetDefault("embedder_model", DefaultEmbedderModel)
	viper.SetDefault("max_turns", 5)

	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "eeviriyi")
	viper.SetDefault("postgres_password", "eeviriyi_dev_password")
	viper.SetDefault("postgres_db_name", "eeviriyi")
	viper.SetDefault("postgres_ssl_mode", "disable")

	viper.SetDefault("posts_dir", "posts")
	viper.SetDefault("default_locale", "en")

	viper.SetDefault("listen_addr", "127.0.0.1:8080")
}

// bindEnvVariables binds environment variables explicitly.
// GEMINI_API_KEY is read directly by Genkit and the genai client, not via
// Viper; Validate() checks its presence.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("serverchan_key", "SERVERCHAN_KEY")
	mustBind("chat_model", "SITE_CHAT_MODEL")
	mustBind("embedder_model", "SITE_EMBEDDER_MODEL")
	mustBind("posts_dir", "SITE_POSTS_DIR")
	mustBind("default_locale", "SITE_DEFAULT_LOCALE")
	mustBind("listen_addr", "SITE_LISTEN_ADDR")
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks avoid substring matching against real secret fragments.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Secrets of 8 chars or fewer are fully masked; longer secrets show the first
// and last 2 characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - PostgresPassword
//   - ServerChanKey
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	a.ServerChanKey = maskSecret(a.ServerChanKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// FullChatModel returns the provider-qualified chat model name for Genkit,
// e.g. "googleai/gemini-2.5-pro".
func (c *Config) FullChatModel() string {
	return "googleai/" + c.ChatModel
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
