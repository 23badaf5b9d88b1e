package out

import (
	"context"

	"examclock/internal/modules/session/domain"
)

// StateStore holds the durable record shared by every view.
type StateStore interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, state domain.State) error
	Clear(ctx context.Context) error
	// Subscribe delivers states written by other processes until ctx is
	// done. The channel is closed when the subscription ends.
	Subscribe(ctx context.Context) (<-chan domain.State, error)
}

type HistoryStore interface {
	// Append reports false when a session with the same start instant is
	// already archived.
	Append(ctx context.Context, session domain.Session) (bool, error)
	List(ctx context.Context, limit int) ([]domain.Session, error)
}

type ReportStore interface {
	Save(ctx context.Context, session domain.Session) (string, error)
	// Find returns the report of the session whose id is id or starts
	// with it.
	Find(ctx context.Context, id string) (domain.Report, error)
}
