package config

import (
	"fmt"
	"os"
	"slices"
)

// validSSLModes lists the PostgreSQL SSL modes the application accepts.
var validSSLModes = []string{"disable", "require", "verify-ca", "verify-full"}

// validLocales lists the UI locales the assistant can greet in.
var validLocales = []string{"en", "zh"}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", ErrMissingAPIKey)
	}

	if c.ChatModel == "" {
		return fmt.Errorf("%w: chat model name is empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder model name is empty", ErrInvalidEmbedderModel)
	}
	if c.MaxTurns < 1 || c.MaxTurns > 20 {
		return fmt.Errorf("%w: %d (must be 1-20)", ErrInvalidMaxTurns, c.MaxTurns)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (must be 1-65535)", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: %q (must be one of %v)",
			ErrInvalidPostgresSSLMode, c.PostgresSSLMode, validSSLModes)
	}

	if !slices.Contains(validLocales, c.DefaultLocale) {
		return fmt.Errorf("%w: %q (must be one of %v)",
			ErrInvalidLocale, c.DefaultLocale, validLocales)
	}

	return nil
}
