package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/models"
)

// NotificationCenter owns the lifecycle of reminder notifications: creation,
// snoozing, expiry, dismissal and acknowledgment, plus the append-only
// snooze audit trail.
//
// State is an explicit owned object, not ambient globals: notifications live
// in an insertion-ordered arena with a composite-key index over the
// non-terminal ones. The arena is loaded from the vault on startup and
// flushed back on every mutation, so records survive restarts and ride
// through the encrypted store.
//
// The engine tick and the sweeper loop run on separate goroutines; the
// mutex serializes their access. Flushes happen under the lock, but the
// vault's own KDF work happens per write and is bounded by collection size.
type NotificationCenter struct {
	vault *Vault
	log   logging.Logger

	maxSnoozes int

	mu    sync.Mutex
	items []*models.Notification
	index map[models.NotificationKey]*models.Notification
}

// NewNotificationCenter constructs an empty center. Call Load before use to
// restore persisted notifications.
func NewNotificationCenter(vault *Vault, log logging.Logger, maxSnoozes int) *NotificationCenter {
	return &NotificationCenter{
		vault:      vault,
		log:        log,
		maxSnoozes: maxSnoozes,
		index:      make(map[models.NotificationKey]*models.Notification),
	}
}

// Load restores persisted notifications from the vault and rebuilds the
// non-terminal index.
func (c *NotificationCenter) Load(ctx context.Context) error {
	list := []*models.Notification{}
	if _, err := c.vault.ReadJSON(ctx, CollectionActiveNotifications, &list); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = list
	c.index = make(map[models.NotificationKey]*models.Notification, len(list))
	for _, n := range list {
		if !n.Terminal() {
			c.index[n.Key()] = n
		}
	}
	return nil
}

// Flush persists the current notification state. It is called internally on
// every mutation and once more on shutdown.
func (c *NotificationCenter) Flush(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushLocked(ctx)
}

func (c *NotificationCenter) flushLocked(ctx context.Context) error {
	return c.vault.WriteJSON(ctx, CollectionActiveNotifications, c.items)
}

// Create handles a due event from the reminder engine. If a non-terminal
// notification already exists for this medication today, it is returned
// unchanged; otherwise a fresh Pending notification is created. At most one
// non-terminal notification exists per (medication, day) at any time.
func (c *NotificationCenter) Create(ctx context.Context, ev models.DueEvent, now time.Time) (models.Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := models.NotificationKey{MedicationID: ev.MedicationID, Date: models.DayKey(now)}
	if existing := c.index[key]; existing != nil {
		return *existing, nil
	}

	n := &models.Notification{
		ID:             uuid.NewString(),
		MedicationID:   ev.MedicationID,
		MedicationName: ev.MedicationName,
		Dosage:         ev.Dosage,
		Date:           key.Date,
		CreatedAt:      now,
	}
	c.items = append(c.items, n)
	c.index[key] = n

	if err := c.flushLocked(ctx); err != nil {
		return models.Notification{}, err
	}

	c.log.Info(ctx, "reminder notification created",
		"medication", ev.MedicationName, "day", key.Date)
	return *n, nil
}

// Snooze defers a notification by the given number of minutes and appends an
// audit entry. Only Pending or already-Snoozed notifications can be snoozed;
// operations on unknown ids are no-ops. Reaching the configured maximum sets
// the advisory final-warning flag, but snoozing is never hard-blocked.
func (c *NotificationCenter) Snooze(ctx context.Context, id string, minutes int, now time.Time) (*models.Notification, error) {
	if minutes <= 0 {
		return nil, common.ErrInvalidSnooze
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.findLocked(id)
	if n == nil || n.Terminal() {
		return nil, nil
	}

	until := now.Add(time.Duration(minutes) * time.Minute)
	n.SnoozedUntil = &until
	n.SnoozeCount++
	n.IsFinalWarning = n.SnoozeCount >= c.maxSnoozes

	entry := models.SnoozeHistoryEntry{
		NotificationID: n.ID,
		MedicationID:   n.MedicationID,
		MedicationName: n.MedicationName,
		SnoozedAt:      now,
		SnoozedUntil:   until,
		Minutes:        minutes,
		SnoozeCount:    n.SnoozeCount,
	}
	if err := c.appendHistoryLocked(ctx, entry); err != nil {
		return nil, err
	}
	if err := c.flushLocked(ctx); err != nil {
		return nil, err
	}

	c.log.Info(ctx, "notification snoozed",
		"medication", n.MedicationName, "minutes", minutes,
		"count", n.SnoozeCount, "final_warning", n.IsFinalWarning)
	return n, nil
}

// Dismiss moves a notification to the terminal dismissed state. The record
// leaves the active view but is retained for audit. Unknown ids are no-ops.
func (c *NotificationCenter) Dismiss(ctx context.Context, id string) error {
	return c.finish(ctx, id, func(n *models.Notification) { n.Dismissed = true })
}

// MarkTaken acknowledges a notification: the dose was taken. Terminal, same
// visibility effect as Dismiss. Unknown ids are no-ops.
func (c *NotificationCenter) MarkTaken(ctx context.Context, id string) error {
	return c.finish(ctx, id, func(n *models.Notification) { n.Taken = true })
}

func (c *NotificationCenter) finish(ctx context.Context, id string, apply func(*models.Notification)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.findLocked(id)
	if n == nil || n.Terminal() {
		return nil
	}

	apply(n)
	n.SnoozedUntil = nil
	delete(c.index, n.Key())
	return c.flushLocked(ctx)
}

// Sweep transitions every notification whose snooze has expired back to
// Pending. It runs at one-second granularity from the sweeper loop and once
// at the start of every engine tick, so an expiring snooze is always applied
// before the engine's dedupe check for the same minute.
func (c *NotificationCenter) Sweep(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := false
	for _, n := range c.items {
		if n.Terminal() {
			continue
		}
		if n.SnoozeExpired(now) {
			n.SnoozedUntil = nil
			changed = true
			c.log.Info(ctx, "snooze expired, notification re-activated",
				"medication", n.MedicationName)
		}
	}
	if !changed {
		return nil
	}
	return c.flushLocked(ctx)
}

// Active returns the externally visible notification set for now's calendar
// day: not dismissed and not taken. Snoozed notifications are included; the
// UI decides how to render the pending countdown.
func (c *NotificationCenter) Active(now time.Time) []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	day := models.DayKey(now)
	out := make([]models.Notification, 0, len(c.items))
	for _, n := range c.items {
		if n.Date == day && !n.Terminal() {
			out = append(out, *n)
		}
	}
	return out
}

// History returns the append-only snooze audit trail. Entries survive
// dismissal and acknowledgment of their notifications.
func (c *NotificationCenter) History(ctx context.Context) ([]models.SnoozeHistoryEntry, error) {
	history := []models.SnoozeHistoryEntry{}
	if _, err := c.vault.ReadJSON(ctx, CollectionSnoozeHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (c *NotificationCenter) appendHistoryLocked(ctx context.Context, entry models.SnoozeHistoryEntry) error {
	history := []models.SnoozeHistoryEntry{}
	if _, err := c.vault.ReadJSON(ctx, CollectionSnoozeHistory, &history); err != nil {
		return err
	}
	history = append(history, entry)
	return c.vault.WriteJSON(ctx, CollectionSnoozeHistory, history)
}

// RunSweeper runs the snooze-expiry sweep at the given interval until ctx is
// done. Sweep failures are logged and the loop keeps going.
func (c *NotificationCenter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Sweep(ctx, time.Now()); err != nil {
				c.log.Error(ctx, "snooze sweep failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *NotificationCenter) findLocked(id string) *models.Notification {
	for _, n := range c.items {
		if n.ID == id {
			return n
		}
	}
	return nil
}
