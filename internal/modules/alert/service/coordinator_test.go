package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"examclock/internal/modules/alert/domain"
	"examclock/internal/modules/alert/service"
)

type recordingNotifier struct {
	infos     []domain.Notification
	criticals []domain.Notification
	closes    int
	err       error
}

func (r *recordingNotifier) Info(_ context.Context, n domain.Notification) error {
	r.infos = append(r.infos, n)
	return r.err
}

func (r *recordingNotifier) Critical(_ context.Context, n domain.Notification) error {
	r.criticals = append(r.criticals, n)
	return r.err
}

func (r *recordingNotifier) CloseCritical(context.Context) error {
	r.closes++
	return r.err
}

type recordingTone struct {
	active   int
	starts   int
	stops    int
	beeps    int
	unlockOK bool
}

func (r *recordingTone) Unlock(context.Context) (bool, error) { return r.unlockOK, nil }

func (r *recordingTone) Start(context.Context, float64) error {
	r.starts++
	r.active++
	return nil
}

func (r *recordingTone) Stop() error {
	r.stops++
	r.active--
	return nil
}

func (r *recordingTone) Beep(context.Context, time.Duration) error {
	r.beeps++
	return nil
}

func newCoordinator(t *testing.T) (*service.Coordinator, *recordingNotifier, *recordingTone) {
	t.Helper()
	notifier := &recordingNotifier{}
	tone := &recordingTone{unlockOK: true}
	return service.NewCoordinator(domain.DefaultThresholds(), 880, notifier, tone, zaptest.NewLogger(t)), notifier, tone
}

func sec(n int) time.Duration { return time.Duration(n) * time.Second }

func TestCoordinatorWarningIsOneShot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, notifier, _ := newCoordinator(t)

	out := c.Observe(ctx, sec(301), sec(300), true, false)
	assert.Equal(t, domain.EffectWarn, out.Effect)
	c.Observe(ctx, sec(300), sec(299), true, false)
	c.Observe(ctx, sec(299), sec(200), true, false)

	require.Len(t, notifier.infos, 1)
	assert.Equal(t, "5 minutes remaining", notifier.infos[0].Body)
}

func TestCoordinatorCriticalLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, notifier, tone := newCoordinator(t)

	out := c.Observe(ctx, sec(61), sec(60), true, false)
	require.Equal(t, domain.EffectCriticalStart, out.Effect)
	assert.Equal(t, "Exam Timer — 1 minute remaining", out.Notification.Title)
	critical, toneOn, _, _ := c.State()
	assert.True(t, critical)
	assert.True(t, toneOn)

	c.Observe(ctx, sec(60), sec(30), true, false)
	assert.Equal(t, 1, tone.starts, "tone must start once per crossing")

	out = c.Observe(ctx, sec(1), 0, true, false)
	assert.Equal(t, domain.EffectCriticalStop, out.Effect)
	assert.Equal(t, 0, tone.active)
	assert.Equal(t, 1, notifier.closes)
	require.Len(t, notifier.criticals, 1)
}

func TestCoordinatorOscillationKeepsOneTone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _, tone := newCoordinator(t)
	prev := sec(61)
	for _, next := range []time.Duration{sec(60), sec(61), sec(60), sec(61), sec(60)} {
		c.Observe(ctx, prev, next, true, false)
		assert.LessOrEqual(t, tone.active, 1)
		prev = next
	}
	assert.Equal(t, 3, tone.starts)
	assert.Equal(t, 2, tone.stops)
	assert.Equal(t, 1, tone.active)
}

func TestCoordinatorSoundOffSkipsTone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, notifier, tone := newCoordinator(t)
	c.Observe(ctx, sec(90), sec(45), false, false)
	assert.Len(t, notifier.criticals, 1)
	assert.Zero(t, tone.starts)

	c.SetSound(ctx, true)
	assert.Equal(t, 1, tone.active, "turning sound on during a critical alert starts the tone")
	c.SetSound(ctx, false)
	assert.Equal(t, 0, tone.active)
}

func TestCoordinatorDismissStopsOnlyTone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, notifier, tone := newCoordinator(t)
	c.Observe(ctx, sec(61), sec(60), true, false)
	c.Dismiss(ctx)

	critical, toneOn, dismissed, _ := c.State()
	assert.True(t, critical)
	assert.False(t, toneOn)
	assert.True(t, dismissed)
	assert.Equal(t, 0, tone.active)
	assert.Zero(t, notifier.closes)

	c.SetSound(ctx, true)
	assert.Equal(t, 0, tone.active, "a dismissed alert stays quiet")
}

func TestCoordinatorResumeInsideCriticalWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _, tone := newCoordinator(t)
	out := c.Observe(ctx, sec(30), sec(30), true, true)
	assert.Equal(t, domain.EffectCriticalStart, out.Effect)
	assert.Equal(t, 1, tone.active)

	out = c.Observe(ctx, sec(30), sec(29), true, true)
	assert.Equal(t, domain.EffectNone, out.Effect)
	assert.Equal(t, 1, tone.starts)
}

func TestCoordinatorSilence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, notifier, tone := newCoordinator(t)
	assert.False(t, c.Silence(ctx))
	c.Observe(ctx, sec(61), sec(59), true, false)
	assert.True(t, c.Silence(ctx))
	assert.Equal(t, 0, tone.active)
	assert.Equal(t, 1, notifier.closes)
	assert.False(t, c.Silence(ctx), "silence is idempotent")
}

func TestCoordinatorSwallowsNotifierErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, notifier, tone := newCoordinator(t)
	notifier.err = errors.New("no display")
	out := c.Observe(ctx, sec(61), sec(60), true, false)
	assert.Equal(t, domain.EffectCriticalStart, out.Effect)
	assert.Equal(t, 1, tone.active)
}

func TestCoordinatorEnableSound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _, tone := newCoordinator(t)
	ok, err := c.EnableSound(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, tone.beeps)

	tone.unlockOK = false
	ok, err = c.EnableSound(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, tone.beeps)
}
