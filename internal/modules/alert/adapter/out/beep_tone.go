package out

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
)

const defaultSegment = 250 * time.Millisecond

// BeepFunc plays freq Hz for durationMs milliseconds and returns once the
// sound is done.
type BeepFunc func(freq float64, durationMs int) error

// BeepTone drives the system speaker at a fixed frequency. The sustained
// tone is a run of back-to-back segments so Stop takes effect within one
// segment.
type BeepTone struct {
	beep    BeepFunc
	freq    float64
	segment time.Duration
	loop    pulseLoop
}

func NewBeepTone(freqHz float64) *BeepTone {
	return NewBeepToneWith(beeep.Beep, freqHz, defaultSegment)
}

func NewBeepToneWith(beep BeepFunc, freqHz float64, segment time.Duration) *BeepTone {
	if freqHz <= 0 {
		freqHz = beeep.DefaultFreq
	}
	if segment <= 0 {
		segment = defaultSegment
	}
	return &BeepTone{beep: beep, freq: freqHz, segment: segment}
}

// Unlock plays a one millisecond pulse to find out whether the speaker
// can be driven at all.
func (t *BeepTone) Unlock(context.Context) (bool, error) {
	if err := t.beep(t.freq, 1); err != nil {
		return false, fmt.Errorf("open speaker: %w", err)
	}
	return true, nil
}

// Start plays freqHz until Stop. A failing speaker ends the loop; the next
// Start tries again.
func (t *BeepTone) Start(_ context.Context, freqHz float64) error {
	if freqHz <= 0 {
		freqHz = t.freq
	}
	ms := int(t.segment / time.Millisecond)
	t.loop.start(0, func() error {
		return t.beep(freqHz, ms)
	})
	return nil
}

func (t *BeepTone) Stop() error {
	t.loop.halt()
	return nil
}

func (t *BeepTone) Beep(_ context.Context, d time.Duration) error {
	if err := t.beep(t.freq, int(d/time.Millisecond)); err != nil {
		return fmt.Errorf("beep: %w", err)
	}
	return nil
}
