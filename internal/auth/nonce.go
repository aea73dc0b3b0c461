package auth

import (
	"sync/atomic"
	"time"
)

// NonceSource hands out replay-protection nonces. Implementations must be
// safe for concurrent use and never return the same value twice.
type NonceSource interface {
	Next() int64
}

// ClockNonce issues millisecond timestamps, bumped by one whenever the
// clock has not advanced (or went backwards) since the previous value.
type ClockNonce struct {
	last atomic.Int64
	now  func() time.Time
}

// NewClockNonce creates a nonce source backed by the wall clock.
func NewClockNonce() *ClockNonce {
	return &ClockNonce{now: time.Now}
}

// Next returns a value strictly greater than every value returned before.
func (c *ClockNonce) Next() int64 {
	for {
		prev := c.last.Load()
		next := c.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if c.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}
