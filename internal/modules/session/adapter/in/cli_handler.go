package in

import (
	"context"

	sessiondto "examclock/internal/modules/session/dto"
	sessionin "examclock/internal/modules/session/port/in"
)

// CLIHandler serves one-shot commands. Each call is a short-lived view of
// the shared session.
type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Tick(ctx)
}

func (h CLIHandler) Start(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Pause(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Exit(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Exit(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) RecordViolation(ctx context.Context, category string) (sessiondto.Snapshot, error) {
	return h.usecase.RecordViolation(ctx, category)
}

func (h CLIHandler) SetSound(ctx context.Context, on bool) (sessiondto.Snapshot, error) {
	return h.usecase.SetSound(ctx, on)
}

func (h CLIHandler) Summary(ctx context.Context) (sessiondto.SummaryOutput, error) {
	if _, err := h.usecase.Tick(ctx); err != nil {
		return sessiondto.SummaryOutput{}, err
	}
	return h.usecase.Summary(ctx)
}

func (h CLIHandler) Report(ctx context.Context, id string) (sessiondto.ReportOutput, error) {
	return h.usecase.Report(ctx, id)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]sessiondto.HistoryEntry, error) {
	return h.usecase.History(ctx, limit)
}
