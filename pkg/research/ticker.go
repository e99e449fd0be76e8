package research

import (
	"context"
	"sync"
	"time"
)

// Ticker calls fn once per interval between Start and Stop. It is the owned
// handle for the one-second timer tick.
type Ticker struct {
	interval time.Duration
	fn       func()

	mu      sync.Mutex
	quit    chan struct{}
	wg      sync.WaitGroup
	running bool
}

func NewTicker(interval time.Duration, fn func()) *Ticker {
	return &Ticker{interval: interval, fn: fn}
}

// Start launches the tick loop. It stops on Stop or when ctx is done.
// Starting a running ticker does nothing.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.quit = make(chan struct{})
	quit := t.quit

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer func() {
			t.mu.Lock()
			if t.quit == quit {
				t.running = false
			}
			t.mu.Unlock()
		}()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.fn()
			case <-quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for an in-flight tick to finish. Safe to call
// more than once.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if t.running {
		close(t.quit)
		t.running = false
	}
	t.mu.Unlock()
	t.wg.Wait()
}

// Running reports whether Start was called without a matching Stop.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
