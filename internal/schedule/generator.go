// Package schedule derives the expected dose slots for a calendar day from
// raw medication definitions. Generation is a pure function of its inputs:
// no clocks, no storage, no side effects.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/models"
)

// defaultIntervalHours is used when an interval medication carries a
// non-positive hour step.
const defaultIntervalHours = 8

// Generate returns the dose slots expected on targetDay for the given
// medications, sorted by time of day ascending (string comparison of
// zero-padded HH:MM is sufficient and stable).
//
// Medications with a malformed time of day are skipped for the day; a broken
// definition must never take the rest of the schedule down with it.
func Generate(medications []models.Medication, targetDay time.Time) []models.Slot {
	slots := make([]models.Slot, 0, len(medications))

	for _, med := range medications {
		hour, minute, err := med.TimeOfDay()
		if err != nil {
			continue
		}

		switch med.Frequency.Kind {
		case models.FrequencyEveryOtherDay:
			if !everyOtherDayDue(med, targetDay) {
				continue
			}
			slots = append(slots, makeSlot(med, hour, minute, med.Name))

		case models.FrequencyInterval:
			slots = append(slots, intervalSlots(med, hour, minute)...)

		default:
			// Daily, and anything unclassified, gets the single configured slot.
			slots = append(slots, makeSlot(med, hour, minute, med.Name))
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Time < slots[j].Time
	})
	return slots
}

// everyOtherDayDue applies the alternation rule: the medication is due when
// the whole days elapsed since its creation is even. Parity is anchored to
// the creation date, not a calendar epoch, so two medications created one
// day apart stay in antiphase.
func everyOtherDayDue(med models.Medication, targetDay time.Time) bool {
	dayDiff := int(targetDay.Sub(med.CreatedAt).Hours() / 24)
	return dayDiff%2 == 0
}

// intervalSlots expands an interval schedule within the target day: starting
// at the configured hour, one slot every IntervalHours until the hour would
// reach or pass 24. Later slots are dropped for the day, not wrapped into
// the next one. The minutes component is preserved verbatim; only the hour
// advances.
func intervalSlots(med models.Medication, hour, minute int) []models.Slot {
	interval := med.Frequency.IntervalHours
	if interval <= 0 {
		interval = defaultIntervalHours
	}

	var out []models.Slot
	dose := 1
	for slotHour := hour; slotHour < 24; slotHour += interval {
		out = append(out, makeSlot(med, slotHour, minute, fmt.Sprintf("Dose %d", dose)))
		dose++
	}
	return out
}

func makeSlot(med models.Medication, hour, minute int, label string) models.Slot {
	return models.Slot{
		MedicationID:   med.ID,
		MedicationName: med.Name,
		Dosage:         med.Dosage,
		Time:           fmt.Sprintf("%02d:%02d", hour, minute),
		Label:          label,
	}
}
