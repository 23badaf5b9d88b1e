package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"examclock/internal/bootstrap"
	sessiondto "examclock/internal/modules/session/dto"
	"examclock/internal/platform/config"
	"examclock/internal/platform/logging"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	dataDir  string
	duration time.Duration
	verbose  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "examclock",
		Short:         "Proctored exam countdown timer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", config.DefaultDataDir(), "directory holding state, history and reports")
	root.PersistentFlags().DurationVar(&flags.duration, "duration", 0, "exam duration (overrides config.yaml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newControlCmd(flags, "start", "Start or resume the countdown", startSession))
	root.AddCommand(newControlCmd(flags, "pause", "Pause the countdown", pauseSession))
	root.AddCommand(newControlCmd(flags, "exit", "End the test now", exitSession))
	root.AddCommand(newControlCmd(flags, "reset", "Discard the session and start over", resetSession))
	root.AddCommand(newViolationCmd(flags))
	root.AddCommand(newSoundCmd(flags))
	root.AddCommand(newSummaryCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newReportCmd(flags))
	return root
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.New(flags.dataDir)
	if err != nil {
		return config.Config{}, err
	}
	if flags.duration != 0 {
		cfg.Duration = flags.duration
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// withApp builds the app, runs fn and tears everything down again.
func withApp(flags *rootFlags, headless bool, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if headless {
		cfg = cfg.Headless()
	}
	logger, err := logging.New(cfg, flags.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := fn(ctx, app)
	if err := app.Close(context.Background()); err != nil {
		logger.Warn("close app", zap.Error(err))
	}
	return runErr
}

func newTUICmd(flags *rootFlags) *cobra.Command {
	var autoStart bool
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the full-screen exam timer",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				return bootstrap.RunTUI(ctx, app, autoStart)
			})
		},
	}
	cmd.Flags().BoolVar(&autoStart, "auto-start", false, "skip the instructions screen and start the countdown")
	return cmd
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, true, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.SessionCLI.Status(ctx)
				if err != nil {
					return err
				}
				printSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}
}

type controlFunc func(ctx context.Context, app *bootstrap.App) (sessiondto.Snapshot, error)

func startSession(ctx context.Context, app *bootstrap.App) (sessiondto.Snapshot, error) {
	return app.SessionCLI.Start(ctx)
}

func pauseSession(ctx context.Context, app *bootstrap.App) (sessiondto.Snapshot, error) {
	return app.SessionCLI.Pause(ctx)
}

func exitSession(ctx context.Context, app *bootstrap.App) (sessiondto.Snapshot, error) {
	return app.SessionCLI.Exit(ctx)
}

func resetSession(ctx context.Context, app *bootstrap.App) (sessiondto.Snapshot, error) {
	return app.SessionCLI.Reset(ctx)
}

func newControlCmd(flags *rootFlags, use, short string, fn controlFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, true, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := fn(ctx, app)
				if err != nil {
					return err
				}
				printSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}
}

func newViolationCmd(flags *rootFlags) *cobra.Command {
	violation := &cobra.Command{Use: "violation", Short: "Proctoring violation commands"}
	violation.AddCommand(&cobra.Command{
		Use:       "record <category>",
		Short:     "Record a violation: multipleFaces|tabSwitch|prohibitedApp",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"multipleFaces", "tabSwitch", "prohibitedApp"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, true, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.SessionCLI.RecordViolation(ctx, args[0])
				if err != nil {
					return err
				}
				printSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	})
	return violation
}

func newSoundCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "sound on|off",
		Short:     "Turn the critical alert tone on or off",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var on bool
			switch strings.ToLower(args[0]) {
			case "on":
				on = true
			case "off":
			default:
				return fmt.Errorf("sound must be on or off, got %q", args[0])
			}
			return withApp(flags, true, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.SessionCLI.SetSound(ctx, on)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sound=%s\n", onOff(snap.SoundOn))
				return nil
			})
		},
	}
}

func newSummaryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the summary of an ended session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, true, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Summary(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "started: %s\ntime taken: %s\n", formatTime(out.StartedAt), out.TimeTakenText)
				for _, c := range out.Counts {
					_, _ = fmt.Fprintf(w, "%s: %d\n", c.Label, c.Count)
				}
				_, _ = fmt.Fprintf(w, "total violations: %d\n", out.Total)
				for _, e := range out.Timeline {
					_, _ = fmt.Fprintf(w, "  %s\t%s\n", e.At.Format(timeLayout), e.Label)
				}
				return nil
			})
		},
	}
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, true, func(ctx context.Context, app *bootstrap.App) error {
				entries, err := app.SessionCLI.History(ctx, limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, e := range entries {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\ttaken=%s\tended_by=%s\tviolations=%d\n",
						e.ID, formatTime(e.StartedAt), e.Label, e.TimeTaken.Round(time.Second), e.EndedBy, e.Total)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list (0 for all)")
	return cmd
}

func newReportCmd(flags *rootFlags) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "report <session-id>",
		Short: "Show the stored report of an archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, true, func(ctx context.Context, app *bootstrap.App) error {
				report, err := app.SessionCLI.Report(ctx, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if raw || !isTerminal(w) {
					_, err = io.WriteString(w, report.Markdown)
					return err
				}
				rendered, err := glamour.Render(report.Markdown, "dark")
				if err != nil {
					return fmt.Errorf("render report: %w", err)
				}
				_, err = fmt.Fprintf(w, "%s\n%s", report.Path, rendered)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without styling")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func printSnapshot(w io.Writer, snap sessiondto.Snapshot) {
	_, _ = fmt.Fprintf(w, "phase=%s remaining=%s sound=%s violations=%d\n", snap.Phase, snap.RemainingText, onOff(snap.SoundOn), snap.Total)
	if !snap.StartedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "started=%s\n", formatTime(snap.StartedAt))
	}
	for _, ev := range snap.Events {
		_, _ = fmt.Fprintf(w, "alert: %s\n", ev.Title)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
