// Package models defines the data model shared by the MedTrack services:
// medications, schedule slots, notifications and the snooze audit trail.
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/common"
)

// FrequencyKind enumerates the supported dosing rules. A tagged type is used
// instead of a free-form string so invalid frequencies cannot be represented.
type FrequencyKind string

const (
	// FrequencyDaily is one dose per day at the configured time.
	FrequencyDaily FrequencyKind = "daily"
	// FrequencyEveryOtherDay is one dose every second day, parity anchored
	// to the medication's creation date.
	FrequencyEveryOtherDay FrequencyKind = "every_other_day"
	// FrequencyInterval is repeated doses every IntervalHours within a day,
	// starting at the configured time.
	FrequencyInterval FrequencyKind = "interval"
)

// Frequency is the dosing rule of a medication. IntervalHours is only
// meaningful when Kind is FrequencyInterval.
type Frequency struct {
	Kind          FrequencyKind `json:"kind"`
	IntervalHours int           `json:"interval_hours,omitempty"`
}

// Valid reports whether the frequency is one of the known kinds.
func (f Frequency) Valid() bool {
	switch f.Kind {
	case FrequencyDaily, FrequencyEveryOtherDay, FrequencyInterval:
		return true
	}
	return false
}

// Medication is a user-defined medication schedule. It is created and edited
// by the CRUD surface and consumed read-only by the schedule generator.
type Medication struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency Frequency `json:"frequency"`
	// Time is the configured time of day in zero-padded "HH:MM" form.
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
	// Stock is the remaining dose count; decremented when a dose is taken.
	Stock int `json:"stock"`
}

// TimeOfDay parses the medication's configured "HH:MM" time. A malformed
// value surfaces common.ErrScheduleConfig; callers recover by skipping the
// medication for the day, never by failing the whole schedule.
func (m Medication) TimeOfDay() (hour, minute int, err error) {
	hh, mm, found := strings.Cut(m.Time, ":")
	if !found {
		return 0, 0, fmt.Errorf("%w: time %q", common.ErrScheduleConfig, m.Time)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time %q", common.ErrScheduleConfig, m.Time)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time %q", common.ErrScheduleConfig, m.Time)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: time %q out of range", common.ErrScheduleConfig, m.Time)
	}
	return hour, minute, nil
}

// Slot is one expected dose occurrence on a given day. Slots are derived and
// ephemeral: recomputed fresh for each target day, never persisted.
type Slot struct {
	MedicationID   string
	MedicationName string
	Dosage         string
	// Time is the slot time of day, zero-padded "HH:MM".
	Time string
	// Label is the display label: the medication name, or "Dose N" for
	// interval schedules.
	Label string
}
