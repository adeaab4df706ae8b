package utilities

import (
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
)

type samples struct {
	count int64
	total time.Duration
}

type timers struct {
	sync.RWMutex
	groups map[string]*samples
}

// Timers accumulates elapsed time per group (e.g. an endpoint or a
// store operation).
type Timers interface {
	// Time starts a timer for group, calling the returned function stops
	// it, records the sample and returns the elapsed time.
	Time(group string) (stop func() time.Duration)
	ReadAll() *data.Timers
	Clear()
}

func NewTimers() Timers {
	return &timers{
		groups: make(map[string]*samples),
	}
}

func (t *timers) Clear() {
	t.Lock()
	defer t.Unlock()

	t.groups = make(map[string]*samples)
}

func (t *timers) Time(group string) func() time.Duration {
	var once sync.Once
	var elapsed time.Duration

	start := time.Now()
	return func() time.Duration {
		once.Do(func() {
			elapsed = time.Since(start)
			t.record(group, elapsed)
		})
		return elapsed
	}
}

func (t *timers) record(group string, elapsed time.Duration) {
	t.Lock()
	defer t.Unlock()

	s, found := t.groups[group]
	if !found {
		s = &samples{}
		t.groups[group] = s
	}
	s.count++
	s.total += elapsed
}

func (t *timers) ReadAll() *data.Timers {
	t.RLock()
	defer t.RUnlock()

	totals, averages := make(map[string]int64), make(map[string]int64)
	for group, s := range t.groups {
		totals[group] = s.total.Nanoseconds()
		if s.count > 0 {
			averages[group] = s.total.Nanoseconds() / s.count
		}
	}
	return &data.Timers{
		Totals:   totals,
		Averages: averages,
	}
}
