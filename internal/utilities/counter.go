package utilities

import (
	"sync"

	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
)

// Outcome is what a cached employees search resolved to.
type Outcome int

const (
	OutcomeHit Outcome = iota
	OutcomeMiss
	OutcomeDiscarded
)

// Counter tallies cache outcomes per search key.
type Counter interface {
	Count(key string, outcome Outcome) (count int)
	Read(key string) data.CacheCount
	ReadAll() *data.CacheCounters
	HitRatio(key string) (ratio float64, total int)
	Reset()
}

type searchCounter struct {
	sync.RWMutex
	searches map[string]*data.CacheCount
}

func NewCounter() Counter {
	return &searchCounter{
		searches: make(map[string]*data.CacheCount),
	}
}

func (c *searchCounter) Count(key string, outcome Outcome) int {
	c.Lock()
	defer c.Unlock()

	count, found := c.searches[key]
	if !found {
		count = &data.CacheCount{}
		c.searches[key] = count
	}
	switch outcome {
	default:
		return 0
	case OutcomeHit:
		count.Hits++
		return count.Hits
	case OutcomeMiss:
		count.Misses++
		return count.Misses
	case OutcomeDiscarded:
		count.Discarded++
		return count.Discarded
	}
}

// Read returns the outcomes for key, a key never counted reads as zero.
func (c *searchCounter) Read(key string) data.CacheCount {
	c.RLock()
	defer c.RUnlock()

	if count, found := c.searches[key]; found {
		return *count
	}
	return data.CacheCount{}
}

func (c *searchCounter) ReadAll() *data.CacheCounters {
	c.RLock()
	defer c.RUnlock()

	counters := &data.CacheCounters{
		CounterHits:      make(map[string]int),
		CounterMisses:    make(map[string]int),
		CounterDiscarded: make(map[string]int),
	}
	for key, count := range c.searches {
		counters.CounterHits[key] = count.Hits
		counters.CounterMisses[key] = count.Misses
		if count.Discarded > 0 {
			counters.CounterDiscarded[key] = count.Discarded
		}
	}
	return counters
}

// HitRatio returns hits over hits plus misses for key, discarded results
// aren't reads so they're left out.
func (c *searchCounter) HitRatio(key string) (float64, int) {
	count := c.Read(key)
	total := count.Hits + count.Misses
	if total == 0 {
		return 0, 0
	}
	return float64(count.Hits) / float64(total), total
}

func (c *searchCounter) Reset() {
	c.Lock()
	defer c.Unlock()

	c.searches = make(map[string]*data.CacheCount)
}
