package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"examclock/internal/modules/session/domain"
	sessionout "examclock/internal/modules/session/port/out"
	"examclock/internal/platform/clock"
	apperrors "examclock/internal/platform/errors"
	"examclock/internal/platform/id"
)

// SessionService applies timer transitions at the current clock reading.
// Every transition first brings a running session up to date, so an
// expired session ends before the requested change is considered.
type SessionService struct {
	clock    clock.Clock
	idGen    id.Generator
	label    string
	duration time.Duration
	history  sessionout.HistoryStore
	reports  sessionout.ReportStore
}

func NewSessionService(clock clock.Clock, idGen id.Generator, label string, duration time.Duration, history sessionout.HistoryStore, reports sessionout.ReportStore) *SessionService {
	return &SessionService{clock: clock, idGen: idGen, label: label, duration: duration, history: history, reports: reports}
}

func (s *SessionService) Duration() time.Duration { return s.duration }

func (s *SessionService) Fresh() domain.State {
	return domain.NewState(s.duration)
}

func (s *SessionService) Tick(state domain.State) domain.State {
	return state.Tick(s.clock.Now())
}

func (s *SessionService) Start(state domain.State) (domain.State, error) {
	now := s.clock.Now()
	return state.Tick(now).Start(now)
}

func (s *SessionService) Pause(state domain.State) (domain.State, error) {
	return state.Pause(s.clock.Now())
}

func (s *SessionService) Exit(state domain.State) (domain.State, error) {
	return state.Exit(s.clock.Now())
}

func (s *SessionService) Reset(state domain.State) domain.State {
	return state.Reset()
}

func (s *SessionService) Record(state domain.State, raw string) (domain.State, error) {
	category, err := domain.ParseCategory(raw)
	if err != nil {
		return state, err
	}
	now := s.clock.Now()
	return state.Tick(now).Record(category, now)
}

// Archive stores an ended session in history and, when it was not archived
// before, writes its report. The returned path is empty when no report was
// written.
func (s *SessionService) Archive(ctx context.Context, state domain.State) (domain.Session, string, error) {
	if !state.Ended {
		return domain.Session{}, "", fmt.Errorf("archive: session has not ended")
	}
	summary := state.Summary()
	endedBy := domain.EndedByExit
	if state.Remaining == 0 {
		endedBy = domain.EndedByTimeout
	}
	session := domain.Session{
		ID:        s.idGen.New(),
		Label:     s.label,
		StartedAt: state.StartedAt,
		EndedAt:   domain.Millis(s.clock.Now()),
		Duration:  state.Duration,
		TimeTaken: summary.TimeTaken,
		EndedBy:   endedBy,
		Timeline:  summary.Timeline,
	}

	var errs error
	fresh := true
	if s.history != nil {
		inserted, err := s.history.Append(ctx, session)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("append history: %w", err))
		}
		fresh = inserted || err != nil
	}
	path := ""
	if fresh && s.reports != nil {
		p, err := s.reports.Save(ctx, session)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("save report: %w", err))
		}
		path = p
	}
	return session, path, errs
}

func (s *SessionService) Report(ctx context.Context, id string) (domain.Report, error) {
	if s.reports == nil {
		return domain.Report{}, fmt.Errorf("%w: reports are disabled", apperrors.ErrNotFound)
	}
	return s.reports.Find(ctx, id)
}

func (s *SessionService) History(ctx context.Context, limit int) ([]domain.Session, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx, limit)
}
