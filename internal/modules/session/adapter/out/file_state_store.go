package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"examclock/internal/modules/session/domain"
	apperrors "examclock/internal/platform/errors"
)

const defaultDebounce = 50 * time.Millisecond

// FileStateStore keeps the durable record in a single JSON file. Every
// process pointing at the same file sees the same session.
type FileStateStore struct {
	path     string
	duration time.Duration
	debounce time.Duration
	logger   *zap.Logger

	mu          sync.Mutex
	lastWritten []byte
}

func NewFileStateStore(path string, duration time.Duration, logger *zap.Logger) *FileStateStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStateStore{path: path, duration: duration, debounce: defaultDebounce, logger: logger}
}

func (s *FileStateStore) Path() string { return s.path }

func (s *FileStateStore) Load(_ context.Context) (domain.State, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.State{}, apperrors.ErrNoState
		}
		return domain.State{}, fmt.Errorf("read session state: %w", err)
	}
	state, err := domain.UnmarshalRecord(payload, s.duration)
	if err != nil {
		return domain.State{}, fmt.Errorf("decode session state: %w", err)
	}
	return state, nil
}

// Save replaces the record atomically: readers see the old or the new
// payload, never a partial one.
func (s *FileStateStore) Save(_ context.Context, state domain.State) error {
	payload, err := domain.MarshalRecord(state)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}

	s.mu.Lock()
	s.lastWritten = payload
	s.mu.Unlock()
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace session state: %w", err)
	}
	return nil
}

func (s *FileStateStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.lastWritten = nil
	s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session state: %w", err)
	}
	return nil
}

// Subscribe watches the state directory and delivers records written by
// other processes. Bursts of events are coalesced; a removed record
// carries no state and is not delivered.
func (s *FileStateStore) Subscribe(ctx context.Context) (<-chan domain.State, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	out := make(chan domain.State, 1)
	go s.watch(ctx, watcher, out)
	return out, nil
}

func (s *FileStateStore) watch(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.State) {
	defer close(out)
	defer watcher.Close()

	target := filepath.Clean(s.path)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("state watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			state, ok := s.readForeign()
			if !ok {
				continue
			}
			select {
			case out <- state:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *FileStateStore) readForeign() (domain.State, bool) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("read changed state", zap.Error(err))
		}
		return domain.State{}, false
	}
	s.mu.Lock()
	own := bytes.Equal(payload, s.lastWritten)
	s.mu.Unlock()
	if own {
		return domain.State{}, false
	}
	state, err := domain.UnmarshalRecord(payload, s.duration)
	if err != nil {
		s.logger.Warn("ignore corrupt remote state", zap.Error(err))
		return domain.State{}, false
	}
	return state, true
}
