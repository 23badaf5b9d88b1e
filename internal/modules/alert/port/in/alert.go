package in

import (
	"context"

	"examclock/internal/modules/alert/dto"
)

type Usecase interface {
	Init(ctx context.Context)
	Observe(ctx context.Context, input dto.ObserveInput) []dto.Event
	Silence(ctx context.Context) []dto.Event
	Dismiss(ctx context.Context)
	SetSound(ctx context.Context, on bool)
	EnableSound(ctx context.Context) (bool, error)
	Status() dto.StatusOutput
}
