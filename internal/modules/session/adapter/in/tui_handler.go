package in

import (
	"context"

	sessiondto "examclock/internal/modules/session/dto"
	sessionin "examclock/internal/modules/session/port/in"
)

// TUIHandler serves the long-lived terminal view.
type TUIHandler struct {
	usecase sessionin.Usecase
}

func NewTUIHandler(usecase sessionin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Load(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Load(ctx)
}

func (h TUIHandler) Tick(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Tick(ctx)
}

func (h TUIHandler) Start(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Start(ctx)
}

func (h TUIHandler) Pause(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Pause(ctx)
}

func (h TUIHandler) Exit(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Exit(ctx)
}

func (h TUIHandler) Reset(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.Reset(ctx)
}

func (h TUIHandler) Record(ctx context.Context, category string) (sessiondto.Snapshot, error) {
	return h.usecase.RecordViolation(ctx, category)
}

func (h TUIHandler) SetSound(ctx context.Context, on bool) (sessiondto.Snapshot, error) {
	return h.usecase.SetSound(ctx, on)
}

func (h TUIHandler) EnableSound(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.EnableSound(ctx)
}

func (h TUIHandler) Dismiss(ctx context.Context) (sessiondto.Snapshot, error) {
	return h.usecase.DismissAlert(ctx)
}

func (h TUIHandler) Watch(ctx context.Context, onChange func(sessiondto.Snapshot)) error {
	return h.usecase.Watch(ctx, onChange)
}

func (h TUIHandler) Close(ctx context.Context) error {
	return h.usecase.Close(ctx)
}
