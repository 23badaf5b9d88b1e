package usecase

import (
	"context"
	"sync"

	"examclock/internal/modules/alert/domain"
	"examclock/internal/modules/alert/dto"
	alertin "examclock/internal/modules/alert/port/in"
	"examclock/internal/modules/alert/service"
)

type Interactor struct {
	mu  sync.Mutex
	svc *service.Coordinator
}

func NewInteractor(svc *service.Coordinator) alertin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Init(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.svc.Unlock(ctx)
}

func (i *Interactor) Observe(ctx context.Context, input dto.ObserveInput) []dto.Event {
	i.mu.Lock()
	defer i.mu.Unlock()
	return toEvents(i.svc.Observe(ctx, input.Previous, input.Current, input.SoundOn, input.Resumed))
}

func (i *Interactor) Silence(ctx context.Context) []dto.Event {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.svc.Silence(ctx) {
		return nil
	}
	return []dto.Event{{Kind: dto.EventCriticalStopped}}
}

func (i *Interactor) Dismiss(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.svc.Dismiss(ctx)
}

func (i *Interactor) SetSound(ctx context.Context, on bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.svc.SetSound(ctx, on)
}

func (i *Interactor) EnableSound(ctx context.Context) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.svc.EnableSound(ctx)
}

func (i *Interactor) Status() dto.StatusOutput {
	i.mu.Lock()
	defer i.mu.Unlock()
	critical, tone, dismissed, unlocked := i.svc.State()
	return dto.StatusOutput{CriticalActive: critical, ToneActive: tone, Dismissed: dismissed, AudioUnlocked: unlocked}
}

func toEvents(o service.Outcome) []dto.Event {
	var kind dto.EventKind
	switch o.Effect {
	case domain.EffectWarn:
		kind = dto.EventWarning
	case domain.EffectCriticalStart:
		kind = dto.EventCriticalStarted
	case domain.EffectCriticalStop:
		kind = dto.EventCriticalStopped
	default:
		return nil
	}
	return []dto.Event{{Kind: kind, Title: o.Notification.Title, Body: o.Notification.Body}}
}
