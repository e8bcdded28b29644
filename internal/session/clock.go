package session

import (
	"sync"
	"time"
)

// Clock supplies the current time and repeating tasks to a Session.
type Clock interface {
	Now() time.Time
	// Every calls fn once per period until the returned Ticker is stopped.
	Every(period time.Duration, fn func()) Ticker
}

// Ticker is a handle to a repeating task.
type Ticker interface {
	// Stop cancels the task. It is safe to call more than once and from
	// inside the task itself.
	Stop()
}

// RealClock returns a Clock backed by the wall clock and time.Ticker.
func RealClock() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Every(period time.Duration, fn func()) Ticker {
	t := &realTicker{ticker: time.NewTicker(period), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				fn()
			}
		}
	}()
	return t
}

type realTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *realTicker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

// ManualClock is a Clock whose time only moves when told to. Due tasks fire
// synchronously, in chronological order, from Advance and Set.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualClock returns a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

type manualTicker struct {
	clock   *ManualClock
	period  time.Duration
	next    time.Time
	fn      func()
	stopped bool
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Every implements Clock.
func (c *ManualClock) Every(period time.Duration, fn func()) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{clock: c, period: period, next: c.now.Add(period), fn: fn}
	c.tickers = append(c.tickers, t)
	return t
}

// Stop implements Ticker.
func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}

// Advance moves the clock forward by d, firing every task that falls due.
func (c *ManualClock) Advance(d time.Duration) {
	c.Set(c.Now().Add(d))
}

// Set moves the clock to target, firing every task that falls due. Moving
// backwards is ignored.
func (c *ManualClock) Set(target time.Time) {
	for {
		c.mu.Lock()
		if target.Before(c.now) {
			c.mu.Unlock()
			return
		}
		due := c.nextDueLocked(target)
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = due.next
		due.next = due.next.Add(due.period)
		fn := due.fn
		c.mu.Unlock()
		fn()
	}
}

// nextDueLocked returns the live ticker with the earliest deadline not after
// target. Ties go to the ticker registered first.
func (c *ManualClock) nextDueLocked(target time.Time) *manualTicker {
	var due *manualTicker
	live := c.tickers[:0]
	for _, t := range c.tickers {
		if t.stopped {
			continue
		}
		live = append(live, t)
		if t.next.After(target) {
			continue
		}
		if due == nil || t.next.Before(due.next) {
			due = t
		}
	}
	c.tickers = live
	return due
}
