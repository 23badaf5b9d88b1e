package in

import (
	"context"

	"examclock/internal/modules/session/dto"
)

type Usecase interface {
	Load(ctx context.Context) (dto.Snapshot, error)
	Tick(ctx context.Context) (dto.Snapshot, error)
	Start(ctx context.Context) (dto.Snapshot, error)
	Pause(ctx context.Context) (dto.Snapshot, error)
	Exit(ctx context.Context) (dto.Snapshot, error)
	Reset(ctx context.Context) (dto.Snapshot, error)
	RecordViolation(ctx context.Context, category string) (dto.Snapshot, error)
	SetSound(ctx context.Context, on bool) (dto.Snapshot, error)
	EnableSound(ctx context.Context) (dto.Snapshot, error)
	DismissAlert(ctx context.Context) (dto.Snapshot, error)
	Summary(ctx context.Context) (dto.SummaryOutput, error)
	History(ctx context.Context, limit int) ([]dto.HistoryEntry, error)
	// Report returns the stored report of an archived session. id may be a
	// unique prefix.
	Report(ctx context.Context, id string) (dto.ReportOutput, error)
	// Watch blocks, applying changes written by other views and calling
	// onChange with each resulting snapshot, until ctx is done.
	Watch(ctx context.Context, onChange func(dto.Snapshot)) error
	Close(ctx context.Context) error
}
