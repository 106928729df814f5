package models

import "time"

// DayKeyLayout formats a time as a calendar day-key, used to scope the
// "one notification per medication per day" uniqueness rule.
const DayKeyLayout = "2006-01-02"

// DayKey returns the day-key for t in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// NotificationKey is the explicit composite key indexing active
// notifications. An index keyed by this struct replaces the original ad hoc
// "id_date" string concatenation, which was open to collision ambiguity.
type NotificationKey struct {
	MedicationID string
	Date         string
}

// DueEvent is emitted by the reminder engine when a dose slot matches the
// current minute. It carries just enough to render a notification.
type DueEvent struct {
	MedicationID   string
	MedicationName string
	Dosage         string
}

// Notification is one reminder instance for a medication on a calendar day.
//
// Lifecycle: Pending (fresh, or re-activated after a snooze expires) ->
// Snoozed (SnoozedUntil set) -> Pending again, or Dismissed/Taken (terminal).
// Terminal notifications disappear from the active view but the record is
// kept for audit until externally cleared.
type Notification struct {
	ID             string     `json:"id"`
	MedicationID   string     `json:"medication_id"`
	MedicationName string     `json:"medication_name"`
	Dosage         string     `json:"dosage"`
	Date           string     `json:"date"`
	CreatedAt      time.Time  `json:"created_at"`
	SnoozeCount    int        `json:"snooze_count"`
	SnoozedUntil   *time.Time `json:"snoozed_until,omitempty"`
	// IsFinalWarning is set once SnoozeCount reaches the configured maximum.
	// It is advisory only: snoozing is never hard-blocked.
	IsFinalWarning bool `json:"is_final_warning,omitempty"`
	Dismissed      bool `json:"dismissed"`
	Taken          bool `json:"taken"`
}

// Key returns the composite index key of the notification.
func (n *Notification) Key() NotificationKey {
	return NotificationKey{MedicationID: n.MedicationID, Date: n.Date}
}

// Terminal reports whether the notification reached a terminal state.
func (n *Notification) Terminal() bool {
	return n.Dismissed || n.Taken
}

// SnoozeExpired reports whether a pending snooze has run out at now.
func (n *Notification) SnoozeExpired(now time.Time) bool {
	return n.SnoozedUntil != nil && !now.Before(*n.SnoozedUntil)
}

// SnoozeHistoryEntry is one append-only audit record of a snooze action.
// Entries are never mutated or deleted by the core.
type SnoozeHistoryEntry struct {
	NotificationID string    `json:"notification_id"`
	MedicationID   string    `json:"medication_id"`
	MedicationName string    `json:"medication_name"`
	SnoozedAt      time.Time `json:"snoozed_at"`
	SnoozedUntil   time.Time `json:"snoozed_until"`
	Minutes        int       `json:"minutes"`
	// SnoozeCount is the notification's snooze count after this action.
	SnoozeCount int `json:"snooze_count"`
}
