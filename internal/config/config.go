package config

import "time"

// Config holds runtime settings for the MedTrack CLI.
//
// Fields:
//   - DatabaseDSN: path to the sqlite database file (":memory:" for ephemeral).
//   - ReminderInterval: how often the reminder engine checks the schedule.
//   - SweepInterval: how often expired snoozes are swept back to pending.
//   - DefaultSnoozeMinutes: snooze duration used when none is given.
//   - MaxSnoozes: snooze count that triggers the final-warning flag.
//   - LowStockThreshold: remaining stock at or below which a refill hint is shown.
type Config struct {
	DatabaseDSN          string
	ReminderInterval     time.Duration
	SweepInterval        time.Duration
	DefaultSnoozeMinutes int
	MaxSnoozes           int
	LowStockThreshold    int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "medtrack.db"
	c.ReminderInterval = time.Minute
	c.SweepInterval = time.Second
	c.DefaultSnoozeMinutes = 10
	c.MaxSnoozes = 3
	c.LowStockThreshold = 5
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
