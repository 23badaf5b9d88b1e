package out

import (
	"context"
	"time"

	"examclock/internal/modules/alert/domain"
)

type Notifier interface {
	Info(ctx context.Context, n domain.Notification) error
	Critical(ctx context.Context, n domain.Notification) error
	CloseCritical(ctx context.Context) error
}

// Tone is a continuous audible alert. Start must be idempotent.
type Tone interface {
	Unlock(ctx context.Context) (bool, error)
	Start(ctx context.Context, freqHz float64) error
	Stop() error
	Beep(ctx context.Context, d time.Duration) error
}
