package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"examclock/internal/modules/alert/domain"
	alertout "examclock/internal/modules/alert/port/out"
)

const testBeep = 150 * time.Millisecond

// Outcome is what one observation did, for callers that surface alerts.
type Outcome struct {
	Effect       domain.Effect
	Notification domain.Notification
}

// Coordinator turns remaining-time observations into notifications and a
// sustained tone. It is not safe for concurrent use.
type Coordinator struct {
	thresholds domain.Thresholds
	freqHz     float64
	notifier   alertout.Notifier
	tone       alertout.Tone
	logger     *zap.Logger

	criticalActive bool
	toneActive     bool
	dismissed      bool
	unlocked       bool
}

func NewCoordinator(thresholds domain.Thresholds, freqHz float64, notifier alertout.Notifier, tone alertout.Tone, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{thresholds: thresholds, freqHz: freqHz, notifier: notifier, tone: tone, logger: logger}
}

func (c *Coordinator) Thresholds() domain.Thresholds { return c.thresholds }

// Unlock makes a best-effort attempt to acquire audio output.
func (c *Coordinator) Unlock(ctx context.Context) bool {
	ok, err := c.tone.Unlock(ctx)
	if err != nil {
		c.logger.Debug("audio unlock failed", zap.Error(err))
	}
	c.unlocked = ok
	return ok
}

// EnableSound retries the unlock and plays a short confirmation beep.
func (c *Coordinator) EnableSound(ctx context.Context) (bool, error) {
	if !c.Unlock(ctx) {
		return false, nil
	}
	if err := c.tone.Beep(ctx, testBeep); err != nil {
		c.logger.Warn("test beep failed", zap.Error(err))
		return true, err
	}
	return true, nil
}

func (c *Coordinator) Observe(ctx context.Context, prev, next time.Duration, soundOn, resumed bool) Outcome {
	prevSec, nextSec := domain.Seconds(prev), domain.Seconds(next)
	effect := domain.Evaluate(c.thresholds, prevSec, nextSec)
	if effect == domain.EffectNone && resumed && c.thresholds.InCritical(nextSec) && !c.criticalActive {
		effect = domain.EffectCriticalStart
	}
	switch effect {
	case domain.EffectWarn:
		n := domain.WarningNotification(c.thresholds)
		if err := c.notifier.Info(ctx, n); err != nil {
			c.logger.Warn("warning notification failed", zap.Error(err))
		}
		return Outcome{Effect: effect, Notification: n}
	case domain.EffectCriticalStart:
		if c.criticalActive {
			return Outcome{}
		}
		return Outcome{Effect: effect, Notification: c.startCritical(ctx, soundOn)}
	case domain.EffectCriticalStop:
		if c.stopCritical(ctx) {
			return Outcome{Effect: effect}
		}
	}
	return Outcome{}
}

// Silence unconditionally ends any critical alert and tone. It reports
// whether anything was active.
func (c *Coordinator) Silence(ctx context.Context) bool {
	return c.stopCritical(ctx)
}

// Dismiss acknowledges the critical alert. Only the tone stops.
func (c *Coordinator) Dismiss(_ context.Context) {
	if !c.criticalActive {
		return
	}
	c.dismissed = true
	c.stopTone()
}

func (c *Coordinator) SetSound(ctx context.Context, on bool) {
	if !on {
		c.stopTone()
		return
	}
	if c.criticalActive && !c.dismissed {
		c.startTone(ctx)
	}
}

func (c *Coordinator) State() (criticalActive, toneActive, dismissed, unlocked bool) {
	return c.criticalActive, c.toneActive, c.dismissed, c.unlocked
}

func (c *Coordinator) startCritical(ctx context.Context, soundOn bool) domain.Notification {
	n := domain.CriticalNotification(c.thresholds)
	c.criticalActive = true
	c.dismissed = false
	if err := c.notifier.Critical(ctx, n); err != nil {
		c.logger.Warn("critical notification failed", zap.Error(err))
	}
	if soundOn {
		c.startTone(ctx)
	}
	return n
}

func (c *Coordinator) stopCritical(ctx context.Context) bool {
	wasActive := c.criticalActive || c.toneActive
	c.stopTone()
	if c.criticalActive {
		if err := c.notifier.CloseCritical(ctx); err != nil {
			c.logger.Debug("close critical notification failed", zap.Error(err))
		}
	}
	c.criticalActive = false
	c.dismissed = false
	return wasActive
}

func (c *Coordinator) startTone(ctx context.Context) {
	if c.toneActive {
		return
	}
	if err := c.tone.Start(ctx, c.freqHz); err != nil {
		c.logger.Warn("tone start failed", zap.Error(err))
		return
	}
	c.toneActive = true
}

func (c *Coordinator) stopTone() {
	if !c.toneActive {
		return
	}
	if err := c.tone.Stop(); err != nil {
		c.logger.Debug("tone stop failed", zap.Error(err))
	}
	c.toneActive = false
}
