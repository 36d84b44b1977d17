package engine

import "time"

// IDSource hands out identifiers for tasks and subtasks. Tasks and subtasks
// share one source so subtask ids are unique across the whole collection.
type IDSource interface {
	Next() int64
	// Advance guarantees every later id is greater than floor.
	Advance(floor int64)
}

// ClockIDs derives ids from the wall clock in milliseconds. Two ids requested
// within the same millisecond are separated by bumping the last issued id, so
// the sequence is strictly increasing.
type ClockIDs struct {
	now  func() time.Time
	last int64
}

// NewClockIDs returns a clock-based id source. A nil now uses time.Now.
func NewClockIDs(now func() time.Time) *ClockIDs {
	if now == nil {
		now = time.Now
	}
	return &ClockIDs{now: now}
}

func (c *ClockIDs) Next() int64 {
	id := max(c.now().UnixMilli(), c.last+1)
	c.last = id
	return id
}

func (c *ClockIDs) Advance(floor int64) {
	c.last = max(c.last, floor)
}

// CounterIDs is a plain incrementing id source
type CounterIDs struct {
	last int64
}

func (c *CounterIDs) Next() int64 {
	c.last++
	return c.last
}

func (c *CounterIDs) Advance(floor int64) {
	c.last = max(c.last, floor)
}
