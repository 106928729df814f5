package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/flagx"
	"github.com/dmitrijs2005/medtrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "1m" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DatabaseDSN          string         `json:"database_dsn"`
	ReminderInterval     timex.Duration `json:"reminder_interval"`
	SweepInterval        timex.Duration `json:"sweep_interval"`
	DefaultSnoozeMinutes int            `json:"default_snooze_minutes"`
	MaxSnoozes           int            `json:"max_snoozes"`
	LowStockThreshold    int            `json:"low_stock_threshold"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Behavior:
//   - Reads and unmarshals the JSON into JsonConfig.
//   - Copies known fields into the provided Config; zero values are skipped
//     so a partial file only overrides what it names.
//   - Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	// Resolve file path from flags.
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.ReminderInterval.Duration > 0 {
		cfg.ReminderInterval = time.Duration(jc.ReminderInterval.Duration)
	}
	if jc.SweepInterval.Duration > 0 {
		cfg.SweepInterval = time.Duration(jc.SweepInterval.Duration)
	}
	if jc.DefaultSnoozeMinutes > 0 {
		cfg.DefaultSnoozeMinutes = jc.DefaultSnoozeMinutes
	}
	if jc.MaxSnoozes > 0 {
		cfg.MaxSnoozes = jc.MaxSnoozes
	}
	if jc.LowStockThreshold > 0 {
		cfg.LowStockThreshold = jc.LowStockThreshold
	}
}
