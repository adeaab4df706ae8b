package cache

import (
	"context"
	"fmt"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/utilities"

	"github.com/antonio-alexander/go-stash"
)

type stashCache struct {
	utilities.Logger
	stash interface {
		stash.Configurer
		stash.Parameterizer
		stash.Initializer
		stash.Shutdowner
	}
	stash.Stasher
}

func NewStash(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Cache
} {
	c := &stashCache{Logger: utilities.NewNopLogger()}
	for _, p := range parameters {
		switch p := p.(type) {
		case utilities.Logger:
			c.Logger = p
		case interface {
			stash.Configurer
			stash.Parameterizer
			stash.Initializer
			stash.Shutdowner
			stash.Stasher
		}:
			c.stash = p
			c.Stasher = p
		}
	}
	if c.stash != nil {
		c.stash.SetParameters(parameters...)
	}
	return c
}

func searchStashKey(searchKey string) string {
	return "search:" + searchKey
}

func employeeStashKey(id int64) string {
	return fmt.Sprintf("employee:%d", id)
}

func (c *stashCache) Configure(envs map[string]string) error {
	if c.stash != nil {
		if err := c.stash.Configure(envs); err != nil {
			return err
		}
	}
	return nil
}

func (c *stashCache) Open(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Initialize()
	}
	return nil
}

func (c *stashCache) Close(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Shutdown()
	}
	return nil
}

func (c *stashCache) Clear(ctx context.Context) error {
	return c.Stasher.Clear()
}

func (c *stashCache) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	var ids data.EmployeeIds

	searchKey, err := search.ToKey()
	if err != nil {
		return nil, err
	}
	if err := c.Stasher.Read(searchStashKey(searchKey), &ids); err != nil {
		c.Trace(ctx, "cache miss for employee search: %s", searchKey)
		return nil, ErrEmployeeSearchNotCached
	}
	employees := make([]*data.Employee, 0, len(ids))
	for _, id := range ids {
		employee := &data.Employee{}
		if err := c.Stasher.Read(employeeStashKey(id), employee); err != nil {
			//KIM: a partial search is as good as a miss, drop it so the
			// next read goes straight to the api
			c.Trace(ctx, "cache miss for employee %d in search: %s", id, searchKey)
			if err := c.Stasher.Delete(searchStashKey(searchKey)); err != nil {
				c.Error(ctx, "error while deleting search (%s): %s", searchKey, err)
			}
			return nil, ErrEmployeeNotCached
		}
		employees = append(employees, employee)
	}
	c.Trace(ctx, "cache hit for employee search: %s", searchKey)
	return employees, nil
}

func (c *stashCache) EmployeesWrite(ctx context.Context, search data.EmployeeSearch, employees ...*data.Employee) error {
	searchKey, err := search.ToKey()
	if err != nil {
		return err
	}
	for _, employee := range employees {
		if _, err := c.Stasher.Write(employeeStashKey(employee.Id), employee); err != nil {
			c.Error(ctx, "error while writing employee (%d): %s", employee.Id, err)
			return err
		}
	}
	ids := employeeIds(employees)
	if _, err := c.Stasher.Write(searchStashKey(searchKey), &ids); err != nil {
		c.Error(ctx, "error while writing search: %s", err)
		return err
	}
	c.Trace(ctx, "cached employees search: %s", searchKey)
	return nil
}
