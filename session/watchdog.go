package session

import (
	"sync"
	"time"
)

// Watchdog enforces the session wall-clock ceiling. It runs on its own
// timer, independent of caller activity, so an abandoned session still
// gets finalized and its emulator released.
type Watchdog struct {
	timer *time.Timer
	once  sync.Once
}

// NewWatchdog arms a timer that invokes onTimeout once after ceiling.
// A non-positive ceiling disables the watchdog.
func NewWatchdog(ceiling time.Duration, onTimeout func()) *Watchdog {
	w := &Watchdog{}
	if ceiling <= 0 {
		return w
	}
	w.timer = time.AfterFunc(ceiling, func() {
		w.once.Do(onTimeout)
	})
	return w
}

// Stop disarms the watchdog. Safe to call whether or not it has fired.
func (w *Watchdog) Stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
	// Consume the once so a racing fire after Stop is a no-op.
	w.once.Do(func() {})
}
