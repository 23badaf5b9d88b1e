package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	alertadapter "examclock/internal/modules/alert/adapter/out"
	alertdomain "examclock/internal/modules/alert/domain"
	alertservice "examclock/internal/modules/alert/service"
	alertusecase "examclock/internal/modules/alert/usecase"
	"examclock/internal/modules/session/domain"
	sessionin "examclock/internal/modules/session/port/in"
	"examclock/internal/modules/session/service"
	"examclock/internal/modules/session/usecase"
	apperrors "examclock/internal/platform/errors"
)

var base = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

// recordHub is the shared durable record behind several in-memory stores.
type recordHub struct {
	mu      sync.Mutex
	payload []byte
	subs    map[*memStore][]chan domain.State
}

func newRecordHub() *recordHub {
	return &recordHub{subs: map[*memStore][]chan domain.State{}}
}

type memStore struct {
	hub      *recordHub
	duration time.Duration
	saveErr  error
	saves    int
	clears   int
}

func (h *recordHub) store(duration time.Duration) *memStore {
	return &memStore{hub: h, duration: duration}
}

func (s *memStore) Load(context.Context) (domain.State, error) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.hub.payload == nil {
		return domain.State{}, apperrors.ErrNoState
	}
	return domain.UnmarshalRecord(s.hub.payload, s.duration)
}

func (s *memStore) Save(_ context.Context, state domain.State) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	payload, err := domain.MarshalRecord(state)
	if err != nil {
		return err
	}
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.saves++
	s.hub.payload = payload
	for other, chans := range s.hub.subs {
		if other == s {
			continue
		}
		remote, err := domain.UnmarshalRecord(payload, other.duration)
		if err != nil {
			return err
		}
		for _, ch := range chans {
			ch <- remote
		}
	}
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.clears++
	s.hub.payload = nil
	return nil
}

func (s *memStore) Subscribe(ctx context.Context) (<-chan domain.State, error) {
	ch := make(chan domain.State, 16)
	s.hub.mu.Lock()
	s.hub.subs[s] = append(s.hub.subs[s], ch)
	s.hub.mu.Unlock()
	return ch, nil
}

func (s *memStore) saved() bool {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.hub.payload != nil
}

type fakeHistory struct {
	mu       sync.Mutex
	sessions []domain.Session
}

func (f *fakeHistory) Append(_ context.Context, session domain.Session) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.StartedAt.Equal(session.StartedAt) {
			return false, nil
		}
	}
	f.sessions = append(f.sessions, session)
	return true, nil
}

func (f *fakeHistory) List(_ context.Context, limit int) ([]domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]domain.Session(nil), f.sessions...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeReports struct {
	mu    sync.Mutex
	saved []domain.Session
}

func (f *fakeReports) Save(_ context.Context, session domain.Session) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, session)
	return "reports/" + session.ID + ".md", nil
}

func (f *fakeReports) Find(_ context.Context, id string) (domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.saved {
		if s.ID == id {
			return domain.Report{SessionID: s.ID, Label: s.Label, StartedAt: s.StartedAt, Path: "reports/" + s.ID + ".md", Markdown: "# " + s.Label + "\n"}, nil
		}
	}
	return domain.Report{}, apperrors.ErrNotFound
}

type countingTone struct {
	mu     sync.Mutex
	active int
}

func (c *countingTone) Unlock(context.Context) (bool, error) { return true, nil }

func (c *countingTone) Start(context.Context, float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active++
	return nil
}

func (c *countingTone) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active--
	return nil
}

func (c *countingTone) Beep(context.Context, time.Duration) error { return nil }

func (c *countingTone) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

type harness struct {
	clock   *fakeClock
	store   *memStore
	history *fakeHistory
	reports *fakeReports
	tone    *countingTone
	uc      sessionin.Usecase
}

func newHarness(t *testing.T, hub *recordHub, clk *fakeClock) *harness {
	t.Helper()
	h := &harness{
		clock:   clk,
		store:   hub.store(45 * time.Minute),
		history: &fakeHistory{},
		reports: &fakeReports{},
		tone:    &countingTone{},
	}
	logger := zaptest.NewLogger(t)
	alerts := alertusecase.NewInteractor(alertservice.NewCoordinator(alertdomain.DefaultThresholds(), 880, alertadapter.NopNotifier{}, h.tone, logger))
	svc := service.NewSessionService(clk, fakeID{}, "Final Exam", 45*time.Minute, h.history, h.reports)
	h.uc = usecase.NewInteractor(svc, h.store, alerts, logger)
	return h
}
