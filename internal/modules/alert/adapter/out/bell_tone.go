package out

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
)

const bell = "\a"

// BellTone approximates a continuous tone by ringing the terminal bell on
// an interval. It is the fallback when no speaker can be driven, so the
// frequency is ignored.
type BellTone struct {
	out      io.Writer
	isTTY    func() bool
	interval time.Duration
	loop     pulseLoop
}

func NewBellTone(f *os.File) *BellTone {
	return &BellTone{
		out: f,
		isTTY: func() bool {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		},
		interval: time.Second,
	}
}

// NewBellToneWriter rings into any writer, treating it as a terminal.
func NewBellToneWriter(w io.Writer, interval time.Duration) *BellTone {
	if interval <= 0 {
		interval = time.Second
	}
	return &BellTone{out: w, isTTY: func() bool { return true }, interval: interval}
}

// Unlock reports whether the bell reaches a terminal.
func (b *BellTone) Unlock(context.Context) (bool, error) {
	return b.isTTY(), nil
}

// Start rings once and keeps ringing until Stop. The loop does not follow
// ctx, which only scopes the call that triggered it.
func (b *BellTone) Start(_ context.Context, _ float64) error {
	if b.loop.running() {
		return nil
	}
	if err := b.ring(); err != nil {
		return err
	}
	b.loop.start(b.interval, b.ring)
	return nil
}

func (b *BellTone) Stop() error {
	b.loop.halt()
	return nil
}

func (b *BellTone) Beep(context.Context, time.Duration) error {
	return b.ring()
}

func (b *BellTone) ring() error {
	if _, err := io.WriteString(b.out, bell); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}
	return nil
}

type NopTone struct{}

func (NopTone) Unlock(context.Context) (bool, error)      { return false, nil }
func (NopTone) Start(context.Context, float64) error      { return nil }
func (NopTone) Stop() error                               { return nil }
func (NopTone) Beep(context.Context, time.Duration) error { return nil }
