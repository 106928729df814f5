// Package reminder runs the periodic check that turns schedule slots into
// due notifications. The engine ticks at one-minute granularity, matches
// slots against the wall clock and deduplicates per medication per day so a
// tick firing twice within the same minute cannot double-notify.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/models"
	"github.com/dmitrijs2005/medtrack/internal/schedule"
)

// MedicationSource supplies the medication definitions to check. The
// medication service satisfies this.
type MedicationSource interface {
	List(ctx context.Context) ([]models.Medication, error)
}

// NotificationSink receives the engine's output. The notification center
// satisfies this.
type NotificationSink interface {
	Sweep(ctx context.Context, now time.Time) error
	Create(ctx context.Context, ev models.DueEvent, now time.Time) (models.Notification, error)
}

// minuteMark records the last minute a medication was notified on a day.
type minuteMark struct {
	hour, minute int
}

// Engine is the reminder ticker. The clock is injectable and Tick is public,
// so tests drive it deterministically without real timers.
type Engine struct {
	meds MedicationSource
	sink NotificationSink
	log  logging.Logger

	interval time.Duration
	now      func() time.Time

	mu sync.Mutex
	// notified is the volatile dedupe registry. Its key includes the
	// calendar day, so it resets implicitly at day rollover; entries for
	// past days are dropped lazily on each tick.
	notified map[models.NotificationKey]minuteMark
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval overrides the tick interval (default one minute).
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithNow overrides the clock, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine constructs a reminder engine over the given source and sink.
func NewEngine(meds MedicationSource, sink NotificationSink, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		meds:     meds,
		sink:     sink,
		log:      log,
		interval: time.Minute,
		now:      time.Now,
		notified: make(map[models.NotificationKey]minuteMark),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run ticks the engine at its interval until ctx is done. Errors within a
// tick are logged and never stop the loop.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.Tick(ctx, e.now())
		case <-ctx.Done():
			return
		}
	}
}

// Tick performs one reminder check at the given instant.
//
// The snooze-expiry sweep is applied before the dedupe/create pass for the
// same tick: a medication that is both expiring a snooze and newly due in
// the same minute must not end up with a duplicate Pending notification.
func (e *Engine) Tick(ctx context.Context, now time.Time) {
	if err := e.sink.Sweep(ctx, now); err != nil {
		e.log.Error(ctx, "pre-tick sweep failed", "error", err)
	}

	medications, err := e.meds.List(ctx)
	if err != nil {
		e.log.Error(ctx, "failed to load medications for reminder check", "error", err)
		return
	}

	day := models.DayKey(now)
	mark := minuteMark{hour: now.Hour(), minute: now.Minute()}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.dropStaleLocked(day)

	for _, slot := range schedule.Generate(medications, now) {
		if !slotMatches(slot, mark) {
			continue
		}

		key := models.NotificationKey{MedicationID: slot.MedicationID, Date: day}
		if last, ok := e.notified[key]; ok && last == mark {
			continue
		}

		ev := models.DueEvent{
			MedicationID:   slot.MedicationID,
			MedicationName: slot.MedicationName,
			Dosage:         slot.Dosage,
		}
		if _, err := e.sink.Create(ctx, ev, now); err != nil {
			e.log.Error(ctx, "failed to create due notification",
				"medication", slot.MedicationName, "error", err)
			continue
		}
		e.notified[key] = mark
	}
}

// dropStaleLocked evicts dedupe entries from previous days.
func (e *Engine) dropStaleLocked(day string) {
	for key := range e.notified {
		if key.Date != day {
			delete(e.notified, key)
		}
	}
}

func slotMatches(slot models.Slot, mark minuteMark) bool {
	var h, m int
	// Slot times come from the generator in zero-padded HH:MM form.
	if _, err := fmt.Sscanf(slot.Time, "%d:%d", &h, &m); err != nil {
		return false
	}
	return h == mark.hour && m == mark.minute
}
