package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	alertoutadapter "examclock/internal/modules/alert/adapter/out"
	alertdomain "examclock/internal/modules/alert/domain"
	alertout "examclock/internal/modules/alert/port/out"
	alertservice "examclock/internal/modules/alert/service"
	alertusecase "examclock/internal/modules/alert/usecase"
	sessioninadapter "examclock/internal/modules/session/adapter/in"
	sessionoutadapter "examclock/internal/modules/session/adapter/out"
	sessiondto "examclock/internal/modules/session/dto"
	sessionservice "examclock/internal/modules/session/service"
	sessionusecase "examclock/internal/modules/session/usecase"
	"examclock/internal/platform/clock"
	"examclock/internal/platform/config"
	"examclock/internal/platform/id"
	"examclock/internal/platform/logging"
	uiapp "examclock/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     *zap.Logger
	SessionCLI sessioninadapter.CLIHandler
	SessionTUI sessioninadapter.TUIHandler

	history *sessionoutadapter.SQLiteHistoryStore
}

func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	clk := clock.SystemClock{}
	ids := id.UUID{}

	history, err := sessionoutadapter.NewSQLiteHistoryStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new history store: %w", err)
	}

	coordinator := alertservice.NewCoordinator(
		alertdomain.Thresholds{Warning: cfg.WarningThreshold, Critical: cfg.CriticalThreshold},
		cfg.ToneFrequencyHz,
		newNotifier(cfg),
		newTone(cfg),
		logger.Named("alert"),
	)
	alertUC := alertusecase.NewInteractor(coordinator)

	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(clk, ids, cfg.Label, cfg.Duration, history, sessionoutadapter.NewMarkdownReportStore(cfg.ReportsDir)),
		sessionoutadapter.NewFileStateStore(cfg.StatePath, cfg.Duration, logger.Named("state")),
		alertUC,
		logger.Named("session"),
	)

	return &App{
		Config:     cfg,
		Logger:     logger,
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		SessionTUI: sessioninadapter.NewTUIHandler(sessionUC),
		history:    history,
	}, nil
}

func newNotifier(cfg config.Config) alertout.Notifier {
	if cfg.Notifier == config.NotifierDesktop {
		return alertoutadapter.NewDesktopNotifier()
	}
	return alertoutadapter.NopNotifier{}
}

func newTone(cfg config.Config) alertout.Tone {
	switch cfg.Sound {
	case config.SoundBeep:
		return alertoutadapter.NewBeepTone(cfg.ToneFrequencyHz)
	case config.SoundBell:
		return alertoutadapter.NewBellTone(os.Stderr)
	}
	return alertoutadapter.NopTone{}
}

// Close silences any alert still sounding and releases the history database.
func (a *App) Close(ctx context.Context) error {
	return multierr.Combine(
		a.SessionTUI.Close(ctx),
		a.history.Close(),
	)
}

// RunTUI runs the terminal view until the user quits. Changes other views
// make to the shared state file are forwarded into the running program.
func RunTUI(ctx context.Context, app *App, autoStart bool) error {
	model := uiapp.NewModel(app.SessionTUI, uiapp.Options{
		Label:        app.Config.Label,
		Duration:     app.Config.Duration,
		TickInterval: app.Config.TickInterval,
		Warning:      app.Config.WarningThreshold,
		Critical:     app.Config.CriticalThreshold,
		AutoStart:    autoStart,
	})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := app.SessionTUI.Watch(gctx, func(snap sessiondto.Snapshot) {
			program.Send(uiapp.RemoteMsg{Snapshot: snap})
		})
		if err != nil {
			app.Logger.Warn("state watch stopped", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}
