package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/schedule"
)

// Today prints the dose schedule for the current calendar day, sorted by
// time of day.
func (a *App) Today(ctx context.Context) error {
	meds, err := a.meds.List(ctx)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	slots := schedule.Generate(meds, time.Now())
	if len(slots) == 0 {
		printlnFn("Nothing scheduled for today.")
		return nil
	}

	for _, s := range slots {
		line := fmt.Sprintf("%s  %s %s", s.Time, s.MedicationName, s.Dosage)
		if s.Label != s.MedicationName {
			line += fmt.Sprintf(" (%s)", s.Label)
		}
		printlnFn(line)
	}
	return nil
}
