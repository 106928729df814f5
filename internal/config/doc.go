// Package config loads runtime configuration for the MedTrack CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   path to the sqlite database file
//	-s int      default snooze duration (minutes)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "1m" or integer nanoseconds:
//
//	{
//	  "database_dsn": "medtrack.db",
//	  "reminder_interval": "1m",
//	  "sweep_interval": "1s",
//	  "default_snooze_minutes": 10,
//	  "max_snoozes": 3,
//	  "low_stock_threshold": 5
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
