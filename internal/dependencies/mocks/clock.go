package mocks

import (
	"sync"
	"time"

	"github.com/skyduel/skyduel/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing
type MockClock struct {
	CurrentTime time.Time

	mu      sync.Mutex
	tickers []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// NewTicker returns a MockTicker the test can drive by hand
func (c *MockClock) NewTicker(time.Duration) clock.Ticker {
	t := NewMockTicker()
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// LastTicker returns the most recently created ticker, or nil
func (c *MockClock) LastTicker() *MockTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// MockTicker is a hand-driven Ticker: send on C to fire a tick
type MockTicker struct {
	C chan time.Time

	stop    sync.Once
	stopped chan struct{}
}

// Ensure MockTicker implements Ticker
var _ clock.Ticker = (*MockTicker)(nil)

// NewMockTicker creates an unstarted mock ticker
func NewMockTicker() *MockTicker {
	return &MockTicker{
		C:       make(chan time.Time, 1),
		stopped: make(chan struct{}),
	}
}

// Chan is the channel ticks arrive on
func (t *MockTicker) Chan() <-chan time.Time {
	return t.C
}

// Stop marks the ticker stopped; safe to call more than once
func (t *MockTicker) Stop() {
	t.stop.Do(func() { close(t.stopped) })
}

// Stopped is closed once Stop has been called
func (t *MockTicker) Stopped() <-chan struct{} {
	return t.stopped
}
