package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/medtrack/internal/models"
)

// getSimpleText is an indirection used to facilitate testing.
// It points to the interactive input helper and can be swapped in tests.
var getSimpleText = GetSimpleText

// AddMedication interactively collects a medication definition and stores it.
func (a *App) AddMedication(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Medication name", os.Stdout)
	if err != nil {
		return err
	}

	dosage, err := getSimpleText(a.reader, "Dosage (e.g. 500mg)", os.Stdout)
	if err != nil {
		return err
	}

	at, err := getSimpleText(a.reader, "Time of first dose (HH:MM)", os.Stdout)
	if err != nil {
		return err
	}

	kind, err := getSimpleText(a.reader, "Frequency: daily, every_other_day or interval", os.Stdout)
	if err != nil {
		return err
	}

	freq := models.Frequency{Kind: models.FrequencyKind(kind)}
	if freq.Kind == models.FrequencyInterval {
		hours, err := getSimpleText(a.reader, "Interval between doses (hours)", os.Stdout)
		if err != nil {
			return err
		}
		freq.IntervalHours, _ = strconv.Atoi(hours)
	}

	stockText, err := getSimpleText(a.reader, "Doses in stock (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}
	stock, _ := strconv.Atoi(stockText)

	med := models.Medication{
		Name:      name,
		Dosage:    dosage,
		Time:      at,
		Frequency: freq,
		Stock:     stock,
	}

	added, err := a.meds.Add(ctx, med)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Added %s %s at %s.", added.Name, added.Dosage, added.Time))
	return nil
}

// ListMedications prints the stored medications with one-based ordinals used
// by delmed.
func (a *App) ListMedications(ctx context.Context) error {
	meds, err := a.meds.List(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if len(meds) == 0 {
		printlnFn("No medications yet. Use addmed to add one.")
		return nil
	}

	for i, m := range meds {
		line := fmt.Sprintf("%d. %s %s at %s (%s", i+1, m.Name, m.Dosage, m.Time, m.Frequency.Kind)
		if m.Frequency.Kind == models.FrequencyInterval {
			line += fmt.Sprintf(" %dh", m.Frequency.IntervalHours)
		}
		line += ")"
		if m.Stock > 0 {
			line += fmt.Sprintf(", %d in stock", m.Stock)
		}
		printlnFn(line)
	}
	return nil
}

// DeleteMedication removes the medication at the given one-based ordinal,
// as printed by ListMedications.
func (a *App) DeleteMedication(ctx context.Context, arg string) error {
	meds, err := a.meds.List(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(meds) {
		printlnFn("Usage: delmed <number> (see list)")
		return nil
	}

	med := meds[n-1]
	if err := a.meds.Delete(ctx, med.ID); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Deleted %s.", med.Name))
	return nil
}
