package config

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ChatModel:        DefaultChatModel,
		EmbedderModel:    DefaultEmbedderModel,
		MaxTurns:         5,
		PostgresHost:     "localhost",
		PostgresPort:     5432,
		PostgresUser:     "eeviriyi",
		PostgresPassword: "secret",
		PostgresDBName:   "eeviriyi",
		PostgresSSLMode:  "disable",
		PostsDir:         "posts",
		DefaultLocale:    "en",
		ListenAddr:       "127.0.0.1:8080",
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "empty chat model",
			mutate:  func(c *Config) { c.ChatModel = "" },
			wantErr: ErrInvalidModelName,
		},
		{
			name:    "empty embedder model",
			mutate:  func(c *Config) { c.EmbedderModel = "" },
			wantErr: ErrInvalidEmbedderModel,
		},
		{
			name:    "max turns too low",
			mutate:  func(c *Config) { c.MaxTurns = 0 },
			wantErr: ErrInvalidMaxTurns,
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.PostgresHost = "" },
			wantErr: ErrInvalidPostgresHost,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.PostgresPort = 70000 },
			wantErr: ErrInvalidPostgresPort,
		},
		{
			name:    "empty database name",
			mutate:  func(c *Config) { c.PostgresDBName = "" },
			wantErr: ErrInvalidPostgresDBName,
		},
		{
			name:    "bad ssl mode",
			mutate:  func(c *Config) { c.PostgresSSLMode = "prefer" },
			wantErr: ErrInvalidPostgresSSLMode,
		},
		{
			name:    "bad locale",
			mutate:  func(c *Config) { c.DefaultLocale = "fr" },
			wantErr: ErrInvalidLocale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	err := validConfig().Validate()
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestMaskSecret(t *testing.T) {
	assert.Empty(t, maskSecret(""))
	assert.Equal(t, maskedValue, maskSecret("short"))

	masked := maskSecret("SCT123456789abcdef")
	assert.True(t, strings.HasPrefix(masked, "SC"))
	assert.True(t, strings.HasSuffix(masked, "ef"))
	assert.NotContains(t, masked, "123456789")
}

func TestMarshalJSONMasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "super-secret-password"
	cfg.ServerChanKey = "SCTsecretpushkey123"

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "super-secret-password")
	assert.NotContains(t, string(data), "SCTsecretpushkey123")
	assert.Contains(t, string(data), maskedValue)
}

func TestQuoteDSNValue(t *testing.T) {
	assert.Equal(t, "''", quoteDSNValue(""))
	assert.Equal(t, "plain", quoteDSNValue("plain"))
	assert.Equal(t, `'pass word'`, quoteDSNValue("pass word"))
	assert.Equal(t, `'it\'s'`, quoteDSNValue("it's"))
}

func TestPostgresConnectionString(t *testing.T) {
	cfg := validConfig()
	dsn := cfg.PostgresConnectionString()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "dbname=eeviriyi")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestPostgresURL(t *testing.T) {
	cfg := validConfig()
	cfg.PostgresPassword = "p@ss/word"

	u := cfg.PostgresURL()
	assert.True(t, strings.HasPrefix(u, "postgres://"))
	assert.Contains(t, u, "localhost:5432")
	assert.Contains(t, u, "sslmode=disable")
	assert.NotContains(t, u, "p@ss/word")
}

func TestParseDatabaseURL(t *testing.T) {
	t.Run("override", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://admin:pw@db.example.com:6543/site?sslmode=require")

		cfg := validConfig()
		require.NoError(t, cfg.parseDatabaseURL())

		assert.Equal(t, "db.example.com", cfg.PostgresHost)
		assert.Equal(t, 6543, cfg.PostgresPort)
		assert.Equal(t, "admin", cfg.PostgresUser)
		assert.Equal(t, "pw", cfg.PostgresPassword)
		assert.Equal(t, "site", cfg.PostgresDBName)
		assert.Equal(t, "require", cfg.PostgresSSLMode)
	})

	t.Run("unset leaves config untouched", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		cfg := validConfig()
		require.NoError(t, cfg.parseDatabaseURL())
		assert.Equal(t, "localhost", cfg.PostgresHost)
	})

	t.Run("bad scheme", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "mysql://root@db/site")

		cfg := validConfig()
		assert.Error(t, cfg.parseDatabaseURL())
	})
}
