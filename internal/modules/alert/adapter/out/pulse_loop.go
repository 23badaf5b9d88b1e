package out

import (
	"sync"
	"time"
)

// pulseLoop repeats a pulse in a goroutine until halted or until a pulse
// fails. A loop that ends on its own clears itself, so the next start
// launches a fresh one.
type pulseLoop struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func (l *pulseLoop) running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stop != nil
}

// start reports false when a loop is already running. gap is waited
// before each pulse; zero plays pulses back to back.
func (l *pulseLoop) start(gap time.Duration, pulse func() error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stop != nil {
		return false
	}
	stop, done := make(chan struct{}), make(chan struct{})
	l.stop, l.done = stop, done
	go l.run(stop, done, gap, pulse)
	return true
}

func (l *pulseLoop) run(stop <-chan struct{}, done chan struct{}, gap time.Duration, pulse func() error) {
	defer func() {
		l.mu.Lock()
		if l.done == done {
			l.stop, l.done = nil, nil
		}
		l.mu.Unlock()
		close(done)
	}()
	for {
		if gap > 0 {
			timer := time.NewTimer(gap)
			select {
			case <-stop:
				timer.Stop()
				return
			case <-timer.C:
			}
		} else {
			select {
			case <-stop:
				return
			default:
			}
		}
		if err := pulse(); err != nil {
			return
		}
	}
}

// halt stops the loop and waits for its goroutine to exit.
func (l *pulseLoop) halt() {
	l.mu.Lock()
	stop, done := l.stop, l.done
	l.stop, l.done = nil, nil
	l.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
