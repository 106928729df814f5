package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medtrack/internal/config"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/models"
	"github.com/dmitrijs2005/medtrack/internal/reminder"
	"github.com/dmitrijs2005/medtrack/internal/services"
	"github.com/dmitrijs2005/medtrack/internal/storage"
)

// newTestApp builds an App over an in-memory database with input scripted
// from the given string.
func newTestApp(t *testing.T, input string) *App {
	t.Helper()
	ctx := context.Background()

	repos, err := storage.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	log := logging.NewSlogLogger(slog.New(slog.DiscardHandler))

	vault, err := services.NewVault(ctx, repos, log)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	meds := services.NewMedicationService(vault, log, cfg.LowStockThreshold)
	center := services.NewNotificationCenter(vault, log, cfg.MaxSnoozes)
	require.NoError(t, center.Load(ctx))

	return &App{
		config: cfg,
		log:    log,
		repos:  repos,
		vault:  vault,
		meds:   meds,
		center: center,
		engine: reminder.NewEngine(meds, center, log),
		reader: bufio.NewReader(strings.NewReader(input)),
	}
}

// capturePrint redirects printlnFn into the returned slice for the duration
// of the test.
func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(args...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestApp_AddListDeleteMedication(t *testing.T) {
	ctx := context.Background()
	out := capturePrint(t)

	app := newTestApp(t, strings.Join([]string{
		"Amoxicilina", "500mg", "08:00", "daily", "20",
	}, "\n")+"\n")

	require.NoError(t, app.AddMedication(ctx))

	meds, err := app.meds.List(ctx)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "Amoxicilina", meds[0].Name)
	assert.Equal(t, 20, meds[0].Stock)

	require.NoError(t, app.ListMedications(ctx))
	assert.Contains(t, strings.Join(*out, ""), "1. Amoxicilina 500mg at 08:00")

	require.NoError(t, app.DeleteMedication(ctx, "1"))
	meds, err = app.meds.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, meds)
}

func TestApp_AddMedicationInterval(t *testing.T) {
	ctx := context.Background()
	capturePrint(t)

	app := newTestApp(t, strings.Join([]string{
		"Dipirona", "1g", "06:00", "interval", "6", "",
	}, "\n")+"\n")

	require.NoError(t, app.AddMedication(ctx))

	meds, err := app.meds.List(ctx)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, models.FrequencyInterval, meds[0].Frequency.Kind)
	assert.Equal(t, 6, meds[0].Frequency.IntervalHours)
}

func TestApp_AddMedicationRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	capturePrint(t)

	app := newTestApp(t, strings.Join([]string{
		"Dipirona", "1g", "26:00", "daily", "",
	}, "\n")+"\n")

	require.Error(t, app.AddMedication(ctx))

	meds, err := app.meds.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, meds)
}

func TestApp_DeleteMedicationBadOrdinal(t *testing.T) {
	ctx := context.Background()
	out := capturePrint(t)

	app := newTestApp(t, "")
	require.NoError(t, app.DeleteMedication(ctx, "7"))
	assert.Contains(t, strings.Join(*out, ""), "Usage: delmed")
}

func TestApp_TakenDecrementsStock(t *testing.T) {
	ctx := context.Background()
	out := capturePrint(t)

	app := newTestApp(t, "")

	med, err := app.meds.Add(ctx, models.Medication{
		Name: "Losartana", Dosage: "50mg", Time: "08:00",
		Frequency: models.Frequency{Kind: models.FrequencyDaily},
		Stock:     3,
	})
	require.NoError(t, err)

	_, err = app.center.Create(ctx, models.DueEvent{
		MedicationID: med.ID, MedicationName: med.Name, Dosage: med.Dosage,
	}, time.Now())
	require.NoError(t, err)

	require.NoError(t, app.Taken(ctx, "1"))

	meds, err := app.meds.List(ctx)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, 2, meds[0].Stock)

	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "Marked Losartana as taken")
	assert.Contains(t, joined, "Stock is low")
	assert.Empty(t, app.center.Active(time.Now()))
}

func TestApp_SnoozeUsesDefaultMinutes(t *testing.T) {
	ctx := context.Background()
	out := capturePrint(t)

	app := newTestApp(t, "")
	app.config.DefaultSnoozeMinutes = 25

	_, err := app.center.Create(ctx, models.DueEvent{
		MedicationID: "m1", MedicationName: "Losartana", Dosage: "50mg",
	}, time.Now())
	require.NoError(t, err)

	require.NoError(t, app.Snooze(ctx, []string{"1"}))
	assert.Contains(t, strings.Join(*out, ""), "Snoozed Losartana for 25 minutes")

	active := app.center.Active(time.Now())
	require.Len(t, active, 1)
	require.NotNil(t, active[0].SnoozedUntil)
}

func TestApp_EncryptOnLockUnlock(t *testing.T) {
	ctx := context.Background()
	capturePrint(t)

	old := getPassword
	defer func() { getPassword = old }()
	pass := "correct horse"
	getPassword = func(w io.Writer) ([]byte, error) {
		return []byte(pass), nil
	}

	app := newTestApp(t, "")

	_, err := app.meds.Add(ctx, models.Medication{
		Name: "Losartana", Dosage: "50mg", Time: "08:00",
		Frequency: models.Frequency{Kind: models.FrequencyDaily},
	})
	require.NoError(t, err)

	require.NoError(t, app.EncryptOn(ctx))
	assert.True(t, app.vault.Enabled())
	assert.False(t, app.isLocked())
	assert.Equal(t, "(encrypted)", app.getStatus())

	require.NoError(t, app.Lock(ctx))
	assert.True(t, app.isLocked())
	assert.Equal(t, "(locked)", app.getStatus())

	pass = "wrong pass"
	require.Error(t, app.Unlock(ctx))
	assert.True(t, app.isLocked())

	pass = "correct horse"
	require.NoError(t, app.Unlock(ctx))
	assert.False(t, app.isLocked())

	meds, err := app.meds.List(ctx)
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "Losartana", meds[0].Name)
}
