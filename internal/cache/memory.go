package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/utilities"
)

type memorySearch struct {
	ids     data.EmployeeIds
	written time.Time
}

type memoryCache struct {
	sync.RWMutex
	sync.WaitGroup
	employees map[int64]*data.Employee //map[id]employee
	searches  map[string]*memorySearch //map[search]ids, ordered as returned
	config    struct {
		pruneInterval time.Duration
		ttl           time.Duration
	}
	ctx       context.Context
	ctxCancel context.CancelFunc
	utilities.Logger
}

func NewMemory(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Cache
} {
	c := &memoryCache{
		Logger:    utilities.NewNopLogger(),
		employees: make(map[int64]*data.Employee),
		searches:  make(map[string]*memorySearch),
	}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *memoryCache) launchPrune() {
	started := make(chan struct{})
	c.Add(1)
	go func() {
		defer c.Done()

		tPrune := time.NewTicker(c.config.pruneInterval)
		defer tPrune.Stop()
		close(started)
		for {
			select {
			case <-c.ctx.Done():
				return
			case <-tPrune.C:
				if n := c.prune(); n > 0 {
					c.Trace(c.ctx, "pruned %d expired searches", n)
				}
			}
		}
	}()
	<-started
}

func (c *memoryCache) prune() int {
	c.Lock()
	defer c.Unlock()

	var pruned int
	for key, search := range c.searches {
		if time.Since(search.written) > c.config.ttl {
			delete(c.searches, key)
			pruned++
		}
	}
	return pruned
}

func (c *memoryCache) Configure(envs map[string]string) error {
	if s, ok := envs["CACHE_PRUNE_INTERVAL"]; ok {
		pruneInterval, _ := strconv.Atoi(s)
		c.config.pruneInterval = time.Second * time.Duration(pruneInterval)
	}
	if c.config.pruneInterval <= 0 {
		c.config.pruneInterval = 10 * time.Second
	}
	if s, ok := envs["CACHE_TTL"]; ok {
		ttl, _ := strconv.Atoi(s)
		c.config.ttl = time.Second * time.Duration(ttl)
	}
	return nil
}

func (c *memoryCache) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.employees = make(map[int64]*data.Employee)
	c.searches = make(map[string]*memorySearch)
	if c.config.ttl > 0 {
		c.ctx, c.ctxCancel = context.WithCancel(context.Background())
		c.launchPrune()
	}
	return nil
}

func (c *memoryCache) Close(ctx context.Context) error {
	if c.ctxCancel != nil {
		c.ctxCancel()
		c.Wait()
	}
	return nil
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.employees = make(map[int64]*data.Employee)
	c.searches = make(map[string]*memorySearch)
	return nil
}

func (c *memoryCache) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	c.RLock()
	defer c.RUnlock()

	searchKey, err := search.ToKey()
	if err != nil {
		return nil, err
	}
	s, ok := c.searches[searchKey]
	if !ok || (c.config.ttl > 0 && time.Since(s.written) > c.config.ttl) {
		return nil, ErrEmployeeSearchNotCached
	}
	employees := make([]*data.Employee, 0, len(s.ids))
	for _, id := range s.ids {
		e, ok := c.employees[id]
		if !ok {
			return nil, ErrEmployeeNotCached
		}
		employees = append(employees, data.CopyEmployee(e))
	}
	return employees, nil
}

func (c *memoryCache) EmployeesWrite(ctx context.Context, search data.EmployeeSearch, employees ...*data.Employee) error {
	c.Lock()
	defer c.Unlock()

	searchKey, err := search.ToKey()
	if err != nil {
		return err
	}
	for _, e := range employees {
		c.employees[e.Id] = data.CopyEmployee(e)
	}
	c.searches[searchKey] = &memorySearch{
		ids:     employeeIds(employees),
		written: time.Now(),
	}
	return nil
}
