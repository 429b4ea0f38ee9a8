package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// quoteDSNValue quotes a DSN value per the libpq keyword/value format.
// Values containing spaces, quotes, or backslashes are wrapped in single
// quotes with internal quotes and backslashes escaped.
func quoteDSNValue(v string) string {
	if v == "" {
		return "''"
	}
	if !strings.ContainsAny(v, " '\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// PostgresConnectionString assembles a keyword/value DSN for pgx.
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quoteDSNValue(c.PostgresHost),
		c.PostgresPort,
		quoteDSNValue(c.PostgresUser),
		quoteDSNValue(c.PostgresPassword),
		quoteDSNValue(c.PostgresDBName),
		quoteDSNValue(c.PostgresSSLMode),
	)
}

// PostgresURL assembles a postgres:// URL, used by the migration runner.
// url.URL handles escaping of special characters in credentials.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDBName,
	}
	q := u.Query()
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// parseDatabaseURL overrides the individual postgres_* fields from the
// DATABASE_URL environment variable when set. Hosted platforms inject the
// connection string in this form.
func (c *Config) parseDatabaseURL() error {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("missing host")
	}

	c.PostgresHost = u.Hostname()
	if port := u.Port(); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", port, err)
		}
		c.PostgresPort = p
	}
	if u.User != nil {
		c.PostgresUser = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.PostgresPassword = pw
		}
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		c.PostgresDBName = name
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.PostgresSSLMode = mode
	}

	return nil
}
