// Package device stores telemetry reported by the site owner's devices.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// recentWindow is how far back ListRecent looks.
const recentWindow = 24 * time.Hour

// Stat is one device's latest telemetry snapshot. Uploads are keyed by
// device name, so each device holds exactly one row.
type Stat struct {
	ID           int       `json:"id"`
	DeviceName   string    `json:"deviceName"`
	BatteryLevel int       `json:"batteryLevel"`
	IsCharging   bool      `json:"isCharging"`
	IsScreenOn   bool      `json:"isScreenOn"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewStat carries an uploaded snapshot. A zero Timestamp means the server
// assigns the current time.
type NewStat struct {
	DeviceName   string    `json:"deviceName"`
	BatteryLevel int       `json:"batteryLevel"`
	IsCharging   bool      `json:"isCharging"`
	IsScreenOn   bool      `json:"isScreenOn"`
	Timestamp    time.Time `json:"timestamp,omitzero"`
}

// Validate checks an upload before it reaches the database.
func (s NewStat) Validate() error {
	if s.DeviceName == "" {
		return errors.New("device name is required")
	}
	if s.BatteryLevel < 0 || s.BatteryLevel > 100 {
		return fmt.Errorf("battery level %d out of range 0-100", s.BatteryLevel)
	}
	return nil
}

// Querier defines the database operations Store needs.
// *pgxpool.Pool satisfies this.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists device telemetry.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     Querier
	logger *slog.Logger
}

// NewStore creates a Store. A nil logger defaults to slog.Default().
func NewStore(db Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Upsert inserts or replaces the snapshot for the stat's device and returns
// the stored row.
func (s *Store) Upsert(ctx context.Context, stat NewStat) (*Stat, error) {
	if err := stat.Validate(); err != nil {
		return nil, err
	}

	ts := stat.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	var stored Stat
	err := s.db.QueryRow(ctx,
		`INSERT INTO device_stats (device_name, battery_level, is_charging, is_screen_on, timestamp)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (device_name) DO UPDATE SET
		     battery_level = EXCLUDED.battery_level,
		     is_charging = EXCLUDED.is_charging,
		     is_screen_on = EXCLUDED.is_screen_on,
		     timestamp = EXCLUDED.timestamp
		 RETURNING id, device_name, battery_level, is_charging, is_screen_on, timestamp`,
		stat.DeviceName, stat.BatteryLevel, stat.IsCharging, stat.IsScreenOn, ts).
		Scan(&stored.ID, &stored.DeviceName, &stored.BatteryLevel, &stored.IsCharging, &stored.IsScreenOn, &stored.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("upserting stats for %s: %w", stat.DeviceName, err)
	}

	s.logger.Debug("device stats uploaded", "device", stored.DeviceName, "battery", stored.BatteryLevel)
	return &stored, nil
}

// ListRecent returns snapshots updated within the last 24 hours, oldest
// first. Devices silent for longer are considered offline and omitted.
func (s *Store) ListRecent(ctx context.Context) ([]Stat, error) {
	cutoff := time.Now().Add(-recentWindow)

	rows, err := s.db.Query(ctx,
		`SELECT id, device_name, battery_level, is_charging, is_screen_on, timestamp
		 FROM device_stats
		 WHERE timestamp >= $1
		 ORDER BY timestamp`,
		cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying recent device stats: %w", err)
	}
	defer rows.Close()

	var stats []Stat
	for rows.Next() {
		var st Stat
		if err := rows.Scan(&st.ID, &st.DeviceName, &st.BatteryLevel, &st.IsCharging, &st.IsScreenOn, &st.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning device stat: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device stats: %w", err)
	}
	return stats, nil
}
