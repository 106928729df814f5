package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/models"
)

// Notifications prints today's active notifications with one-based ordinals
// used by snooze, taken and dismiss.
func (a *App) Notifications(ctx context.Context) error {
	active := a.center.Active(time.Now())
	if len(active) == 0 {
		printlnFn("No active notifications.")
		return nil
	}

	for i, n := range active {
		line := fmt.Sprintf("%d. %s %s", i+1, n.MedicationName, n.Dosage)
		if n.SnoozedUntil != nil {
			line += fmt.Sprintf(" (snoozed until %s)", n.SnoozedUntil.Format("15:04"))
		}
		if n.IsFinalWarning {
			line += " [final warning]"
		}
		printlnFn(line)
	}
	return nil
}

// resolveNotification maps a one-based ordinal from the last-printed active
// list onto a notification id. Returns empty on a bad ordinal.
func (a *App) resolveNotification(arg string) string {
	active := a.center.Active(time.Now())
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(active) {
		return ""
	}
	return active[n-1].ID
}

// Snooze defers the selected notification. An optional second argument gives
// the snooze duration in minutes; the configured default is used otherwise.
func (a *App) Snooze(ctx context.Context, args []string) error {
	id := a.resolveNotification(args[0])
	if id == "" {
		printlnFn("Usage: snooze <number> [minutes] (see notif)")
		return nil
	}

	minutes := a.config.DefaultSnoozeMinutes
	if len(args) > 1 {
		m, err := strconv.Atoi(args[1])
		if err != nil || m <= 0 {
			printlnFn("Snooze minutes must be a positive number.")
			return nil
		}
		minutes = m
	}

	n, err := a.center.Snooze(ctx, id, minutes, time.Now())
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	if n == nil {
		return nil
	}

	msg := fmt.Sprintf("Snoozed %s for %d minutes.", n.MedicationName, minutes)
	if n.IsFinalWarning {
		msg += " This was the last planned snooze."
	}
	printlnFn(msg)
	return nil
}

// Taken acknowledges the selected notification and decrements the
// medication's stock counter.
func (a *App) Taken(ctx context.Context, arg string) error {
	active := a.center.Active(time.Now())
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(active) {
		printlnFn("Usage: taken <number> (see notif)")
		return nil
	}
	notif := active[n-1]

	if err := a.center.MarkTaken(ctx, notif.ID); err != nil {
		printlnFn(err.Error())
		return err
	}

	remaining, low, err := a.meds.DecrementStock(ctx, notif.MedicationID)
	if err == nil && low {
		printlnFn(fmt.Sprintf("Stock is low: %d doses of %s left.", remaining, notif.MedicationName))
	}

	printlnFn(fmt.Sprintf("Marked %s as taken.", notif.MedicationName))
	return nil
}

// Dismiss discards the selected notification without recording a dose.
func (a *App) Dismiss(ctx context.Context, arg string) error {
	id := a.resolveNotification(arg)
	if id == "" {
		printlnFn("Usage: dismiss <number> (see notif)")
		return nil
	}

	if err := a.center.Dismiss(ctx, id); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Dismissed.")
	return nil
}

// History prints the snooze audit trail, oldest first.
func (a *App) History(ctx context.Context) error {
	history, err := a.center.History(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if len(history) == 0 {
		printlnFn("No snoozes recorded.")
		return nil
	}

	for _, h := range history {
		printlnFn(fmt.Sprintf("%s  %s snoozed %d min (snooze #%d)",
			h.SnoozedAt.Format(models.DayKeyLayout+" 15:04"),
			h.MedicationName, h.Minutes, h.SnoozeCount))
	}
	return nil
}
