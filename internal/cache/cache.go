package cache

import (
	"context"
	"errors"

	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
)

var (
	ErrEmployeeSearchNotCached = errors.New("employee search not cached")
	ErrEmployeeNotCached       = errors.New("employee not cached")
)

// Cache holds the results of employee searches; it's only ever a
// shortcut, a miss must always be answered by the remote api.
type Cache interface {
	EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error)
	EmployeesWrite(ctx context.Context, search data.EmployeeSearch, employees ...*data.Employee) error
	Clear(ctx context.Context) error
}

func employeeIds(employees []*data.Employee) data.EmployeeIds {
	ids := make(data.EmployeeIds, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.Id)
	}
	return ids
}
