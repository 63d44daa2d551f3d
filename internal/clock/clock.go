package clock

import (
	"sync"
	"time"
)

// Clock выдает текущее время в UTC. Точность - микросекунды, как у timestamp в PostgreSQL.
type Clock interface {
	NowUtc() time.Time
}

type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) NowUtc() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// StubClock - управляемые часы для тестов.
type StubClock struct {
	now  time.Time
	lock sync.Mutex
}

func NewStubClock(start time.Time) *StubClock {
	return &StubClock{now: start.UTC().Truncate(time.Microsecond)}
}

func (c *StubClock) NowUtc() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *StubClock) SetNow(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = now.UTC().Truncate(time.Microsecond)
}

// Advance сдвигает часы и возвращает новое время.
func (c *StubClock) Advance(d time.Duration) time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
