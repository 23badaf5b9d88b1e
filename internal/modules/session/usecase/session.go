package usecase

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	alertdto "examclock/internal/modules/alert/dto"
	alertin "examclock/internal/modules/alert/port/in"
	"examclock/internal/modules/session/domain"
	sessiondto "examclock/internal/modules/session/dto"
	sessionin "examclock/internal/modules/session/port/in"
	sessionout "examclock/internal/modules/session/port/out"
	"examclock/internal/modules/session/service"
	apperrors "examclock/internal/platform/errors"
)

type opKind int

const (
	opTick opKind = iota
	opStart
	opPause
	opExit
	opReset
	opRecord
	opSound
)

// Interactor owns the in-memory session. Ticks, user actions and changes
// from other views are applied one at a time under mu; after each one the
// record is written back and the alert coordinator sees the new remaining
// time.
type Interactor struct {
	mu     sync.Mutex
	svc    *service.SessionService
	store  sessionout.StateStore
	alerts alertin.Usecase
	logger *zap.Logger

	state  domain.State
	loaded bool
}

func NewInteractor(svc *service.SessionService, store sessionout.StateStore, alerts alertin.Usecase, logger *zap.Logger) sessionin.Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{svc: svc, store: store, alerts: alerts, logger: logger}
}

func (i *Interactor) Load(ctx context.Context) (sessiondto.Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	events := i.loadLocked(ctx)
	return i.snapshot(events), nil
}

func (i *Interactor) Tick(ctx context.Context) (sessiondto.Snapshot, error) {
	return i.run(ctx, opTick, func(s domain.State) (domain.State, error) {
		return i.svc.Tick(s), nil
	})
}

func (i *Interactor) Start(ctx context.Context) (sessiondto.Snapshot, error) {
	return i.run(ctx, opStart, i.svc.Start)
}

func (i *Interactor) Pause(ctx context.Context) (sessiondto.Snapshot, error) {
	return i.run(ctx, opPause, i.svc.Pause)
}

func (i *Interactor) Exit(ctx context.Context) (sessiondto.Snapshot, error) {
	return i.run(ctx, opExit, i.svc.Exit)
}

func (i *Interactor) Reset(ctx context.Context) (sessiondto.Snapshot, error) {
	return i.run(ctx, opReset, func(s domain.State) (domain.State, error) {
		return i.svc.Reset(s), nil
	})
}

func (i *Interactor) RecordViolation(ctx context.Context, category string) (sessiondto.Snapshot, error) {
	return i.run(ctx, opRecord, func(s domain.State) (domain.State, error) {
		return i.svc.Record(s, category)
	})
}

func (i *Interactor) SetSound(ctx context.Context, on bool) (sessiondto.Snapshot, error) {
	return i.run(ctx, opSound, func(s domain.State) (domain.State, error) {
		return i.svc.Tick(s).SetSound(on), nil
	})
}

func (i *Interactor) EnableSound(ctx context.Context) (sessiondto.Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ensureLoaded(ctx)
	ok, err := i.alerts.EnableSound(ctx)
	if err != nil {
		i.logger.Warn("enable sound", zap.Error(err))
	}
	i.logger.Info("sound enable requested", zap.Bool("unlocked", ok))
	return i.snapshot(nil), nil
}

func (i *Interactor) DismissAlert(ctx context.Context) (sessiondto.Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ensureLoaded(ctx)
	i.alerts.Dismiss(ctx)
	return i.snapshot(nil), nil
}

func (i *Interactor) Summary(ctx context.Context) (sessiondto.SummaryOutput, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ensureLoaded(ctx)
	return toSummary(i.state.Summary()), nil
}

func (i *Interactor) History(ctx context.Context, limit int) ([]sessiondto.HistoryEntry, error) {
	sessions, err := i.svc.History(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.HistoryEntry, 0, len(sessions))
	for _, s := range sessions {
		counts := toCounts(s.Counts())
		total := 0
		for _, c := range counts {
			total += c.Count
		}
		out = append(out, sessiondto.HistoryEntry{
			ID:        s.ID,
			Label:     s.Label,
			StartedAt: s.StartedAt,
			EndedAt:   s.EndedAt,
			Duration:  s.Duration,
			TimeTaken: s.TimeTaken,
			EndedBy:   string(s.EndedBy),
			Total:     total,
			Counts:    counts,
		})
	}
	return out, nil
}

func (i *Interactor) Report(ctx context.Context, id string) (sessiondto.ReportOutput, error) {
	report, err := i.svc.Report(ctx, id)
	if err != nil {
		return sessiondto.ReportOutput{}, err
	}
	return sessiondto.ReportOutput{
		SessionID: report.SessionID,
		Label:     report.Label,
		StartedAt: report.StartedAt,
		Path:      report.Path,
		Markdown:  report.Markdown,
	}, nil
}

func (i *Interactor) Watch(ctx context.Context, onChange func(sessiondto.Snapshot)) error {
	updates, err := i.store.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case remote, ok := <-updates:
			if !ok {
				return nil
			}
			snap := i.hydrate(ctx, remote)
			if onChange != nil {
				onChange(snap)
			}
		}
	}
}

// Close stops any alert still sounding. The durable record is left as is
// so another view, or a later run, can pick the session up.
func (i *Interactor) Close(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.alerts.Silence(ctx)
	return nil
}

func (i *Interactor) ensureLoaded(ctx context.Context) []alertdto.Event {
	if i.loaded {
		return nil
	}
	return i.loadLocked(ctx)
}

func (i *Interactor) loadLocked(ctx context.Context) []alertdto.Event {
	stored, err := i.store.Load(ctx)
	switch {
	case errors.Is(err, apperrors.ErrNoState):
		stored = i.svc.Fresh()
	case err != nil:
		i.logger.Warn("load session state, starting fresh", zap.Error(err))
		stored = i.svc.Fresh()
	}
	i.loaded = true
	i.alerts.Init(ctx)

	next := i.svc.Tick(stored)
	i.state = next
	var events []alertdto.Event
	if stored.Running {
		events = i.alerts.Observe(ctx, alertdto.ObserveInput{
			Previous: stored.Duration,
			Current:  next.Remaining,
			SoundOn:  next.SoundOn,
			Resumed:  true,
		})
	}
	if next.Phase() != stored.Phase() {
		i.persist(ctx, next)
	}
	if !stored.Ended && next.Ended {
		i.archive(ctx, next)
	}
	i.logger.Debug("session loaded", zap.String("phase", string(next.Phase())))
	return events
}

func (i *Interactor) run(ctx context.Context, kind opKind, op func(domain.State) (domain.State, error)) (sessiondto.Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	events := i.ensureLoaded(ctx)

	before := i.state
	next, err := op(before)
	i.state = next

	switch kind {
	case opPause, opExit, opReset:
		events = append(events, i.alerts.Silence(ctx)...)
	case opSound:
		i.alerts.SetSound(ctx, next.SoundOn)
		fallthrough
	default:
		events = append(events, i.alerts.Observe(ctx, alertdto.ObserveInput{
			Previous: before.Remaining,
			Current:  next.Remaining,
			SoundOn:  next.SoundOn,
			Resumed:  kind == opStart && err == nil,
		})...)
	}

	switch {
	case kind == opReset:
		if clearErr := i.store.Clear(ctx); clearErr != nil {
			i.logger.Warn("clear session state", zap.Error(clearErr))
		}
	case kind == opTick:
		if domain.WholeSeconds(before.Remaining) != domain.WholeSeconds(next.Remaining) || before.Phase() != next.Phase() {
			i.persist(ctx, next)
		}
	case err == nil || before.Phase() != next.Phase():
		i.persist(ctx, next)
	}

	if !before.Ended && next.Ended {
		i.archive(ctx, next)
	}
	if err != nil {
		i.logger.Debug("transition rejected", zap.String("phase", string(next.Phase())), zap.Error(err))
	} else if kind != opTick {
		i.logger.Info("session updated", zap.String("phase", string(next.Phase())), zap.Duration("remaining", next.Remaining))
	}
	return i.snapshot(events), err
}

// hydrate adopts a state written by another view. It is not written back.
func (i *Interactor) hydrate(ctx context.Context, remote domain.State) sessiondto.Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()
	events := i.ensureLoaded(ctx)

	before := i.state
	next := i.svc.Tick(remote)
	i.state = next
	if next.Running {
		events = append(events, i.alerts.Observe(ctx, alertdto.ObserveInput{
			Previous: before.Remaining,
			Current:  next.Remaining,
			SoundOn:  next.SoundOn,
			Resumed:  !before.Running,
		})...)
		i.alerts.SetSound(ctx, next.SoundOn)
	} else {
		events = append(events, i.alerts.Silence(ctx)...)
	}
	if !remote.Ended && next.Ended {
		i.archive(ctx, next)
	}
	i.logger.Debug("applied remote change", zap.String("phase", string(next.Phase())))
	return i.snapshot(events)
}

func (i *Interactor) persist(ctx context.Context, state domain.State) {
	if err := i.store.Save(ctx, state); err != nil {
		i.logger.Warn("save session state", zap.Error(err))
	}
}

func (i *Interactor) archive(ctx context.Context, state domain.State) {
	session, path, err := i.svc.Archive(ctx, state)
	if err != nil {
		i.logger.Warn("archive session", zap.Error(err))
		return
	}
	i.logger.Info("session archived", zap.String("id", session.ID), zap.String("ended_by", string(session.EndedBy)), zap.String("report", path))
}

func (i *Interactor) snapshot(events []alertdto.Event) sessiondto.Snapshot {
	s := i.state
	counts := toCounts(s.Violations.Counts())
	snap := sessiondto.Snapshot{
		Phase:            string(s.Phase()),
		Remaining:        s.Remaining,
		RemainingText:    domain.FormatClock(s.Remaining),
		RemainingSeconds: domain.WholeSeconds(s.Remaining),
		Duration:         s.Duration,
		Running:          s.Running,
		Ended:            s.Ended,
		SoundOn:          s.SoundOn,
		StartedAt:        s.StartedAt,
		Counts:           counts,
		Total:            s.Violations.Total(),
		Recent:           toEntries(s.Violations.Recent(0)),
		Alert:            i.alerts.Status(),
		Events:           events,
	}
	if s.Ended {
		summary := toSummary(s.Summary())
		snap.Summary = &summary
	}
	return snap
}

func toSummary(s domain.Summary) sessiondto.SummaryOutput {
	counts := toCounts(s.Counts)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return sessiondto.SummaryOutput{
		StartedAt:     s.StartedAt,
		TimeTaken:     s.TimeTaken,
		TimeTakenText: s.TimeTakenText(),
		Counts:        counts,
		Total:         total,
		Timeline:      toEntries(s.Timeline),
	}
}

func toCounts(counts map[domain.Category]int) []sessiondto.CategoryCount {
	out := make([]sessiondto.CategoryCount, 0, len(counts))
	for _, c := range domain.Categories() {
		out = append(out, sessiondto.CategoryCount{Key: string(c), Label: c.ShortLabel(), Count: counts[c]})
	}
	return out
}

func toEntries(entries []domain.Entry) []sessiondto.ViolationEntry {
	out := make([]sessiondto.ViolationEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, sessiondto.ViolationEntry{Category: string(e.Category), Label: e.Category.Label(), At: e.At})
	}
	return out
}
