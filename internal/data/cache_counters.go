package data

import "encoding/json"

// CacheCount is how often a search was served from the cache, had to go
// to the api, or had its result discarded because a write happened while
// it was in flight.
type CacheCount struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Discarded int `json:"discarded"`
}

type CacheCounters struct {
	CounterHits      map[string]int `json:"counter_hits,omitempty"`
	CounterMisses    map[string]int `json:"counter_misses,omitempty"`
	CounterDiscarded map[string]int `json:"counter_discarded,omitempty"`
}

// EmployeeIds is the list of employees a cached search resolved to.
type EmployeeIds []int64

func (e *EmployeeIds) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeeIds) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
