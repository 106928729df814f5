package cli

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/config"
	"github.com/dmitrijs2005/medtrack/internal/logging"
	"github.com/dmitrijs2005/medtrack/internal/reminder"
	"github.com/dmitrijs2005/medtrack/internal/services"
	"github.com/dmitrijs2005/medtrack/internal/storage"
)

// App ties the MedTrack services together behind the interactive REPL.
type App struct {
	config *config.Config
	log    logging.Logger

	repos  *storage.Repositories
	vault  *services.Vault
	meds   *services.MedicationService
	center *services.NotificationCenter
	engine *reminder.Engine

	reader *bufio.Reader
}

// NewApp initializes storage, the vault and the services over it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	repos, err := storage.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	vault, err := services.NewVault(ctx, repos, log)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	meds := services.NewMedicationService(vault, log, c.LowStockThreshold)
	center := services.NewNotificationCenter(vault, log, c.MaxSnoozes)
	engine := reminder.NewEngine(meds, center, log,
		reminder.WithInterval(c.ReminderInterval))

	return &App{
		config: c,
		log:    log,
		repos:  repos,
		vault:  vault,
		meds:   meds,
		center: center,
		engine: engine,
		reader: bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the background loops and the REPL, and blocks until the user
// exits. Notification state is flushed and the database closed on the way out.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.repos.Close() }()

	// A locked vault has to be opened before any state can load.
	if a.vault.Locked() {
		printlnFn("Vault is encrypted. Unlock to continue.")
		for a.vault.Locked() {
			if err := a.Unlock(ctx); err != nil && !errors.Is(err, common.ErrorUnauthorized) {
				return
			}
		}
	}

	if err := a.center.Load(ctx); err != nil {
		a.log.Error(ctx, "failed to load notifications", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.center.RunSweeper(ctx, a.config.SweepInterval)
	go a.engine.Run(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)

	cancel()
	if err := a.center.Flush(context.Background()); err != nil {
		a.log.Error(ctx, "failed to flush notifications on shutdown", "error", err)
	}
}

func (a *App) getStatus() string {
	switch {
	case a.vault.Locked():
		return "(locked)"
	case a.vault.Enabled():
		return "(encrypted)"
	default:
		return ""
	}
}

func (a *App) isLocked() bool {
	return a.vault.Locked()
}
