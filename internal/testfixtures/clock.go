package testfixtures

import (
	"sync"
	"time"
)

// Clock is a controllable time source. Services, the analytics processor and
// the cache share one instance so session phases, report timestamps and
// rate-limit windows move together.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for constructor injection. A nil clock yields time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// SessionWindow returns RFC3339 start and end strings for a session that
// begins offset from now and lasts length, the shape stored on invitations.
func (c *Clock) SessionWindow(offset, length time.Duration) (start, end string) {
	begin := c.Now().Add(offset)
	return begin.Format(time.RFC3339), begin.Add(length).Format(time.RFC3339)
}
