// Package table is a sorted, paginated projection of a list of employees.
// It performs no I/O of its own (other than writing what it's asked to)
// and never modifies the records it's given.
package table

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
)

const DefaultPageSize int = 5

const (
	ColumnId          string = "id"
	ColumnName        string = "name"
	ColumnEmail       string = "email"
	ColumnDesignation string = "designation"
	ColumnDepartment  string = "department"
	ColumnJoiningDate string = "joiningDate"
	ColumnActions     string = "actions"
)

var (
	ErrUnknownColumn     = errors.New("unknown column")
	ErrColumnNotSortable = errors.New("column not sortable")
	ErrRowNotFound       = errors.New("row not found")
)

// EditFunc is called with the full record of the row being edited.
type EditFunc func(employee *data.Employee)

// DeleteFunc is called with the id of the row being deleted.
type DeleteFunc func(id int64)

type column struct {
	key      string
	header   string
	sortable bool
	less     func(a, b *data.Employee) bool
	cell     func(position int, e *data.Employee) string
}

var columns = []column{
	{
		key:      ColumnId,
		header:   "ID",
		sortable: true,
		less:     func(a, b *data.Employee) bool { return a.Id < b.Id },
		cell:     func(position int, _ *data.Employee) string { return strconv.Itoa(position) },
	},
	{
		key:      ColumnName,
		header:   "Name",
		sortable: true,
		less:     func(a, b *data.Employee) bool { return lessString(a.Name, b.Name) },
		cell:     func(_ int, e *data.Employee) string { return e.Name },
	},
	{
		key:      ColumnEmail,
		header:   "Email",
		sortable: true,
		less:     func(a, b *data.Employee) bool { return lessString(a.Email, b.Email) },
		cell:     func(_ int, e *data.Employee) string { return e.Email },
	},
	{
		key:      ColumnDesignation,
		header:   "Designation",
		sortable: true,
		less:     func(a, b *data.Employee) bool { return lessString(a.Designation, b.Designation) },
		cell:     func(_ int, e *data.Employee) string { return e.Designation },
	},
	{
		key:      ColumnDepartment,
		header:   "Department",
		sortable: true,
		less:     func(a, b *data.Employee) bool { return lessString(a.Department, b.Department) },
		cell:     func(_ int, e *data.Employee) string { return e.Department },
	},
	{
		key:      ColumnJoiningDate,
		header:   "Joining Date",
		sortable: true,
		less: func(a, b *data.Employee) bool {
			return a.JoiningTime().Before(b.JoiningTime())
		},
		cell: func(_ int, e *data.Employee) string { return data.FormatDate(e.JoiningDate) },
	},
	{
		key:    ColumnActions,
		header: "Actions",
		cell:   func(int, *data.Employee) string { return "Edit | Delete" },
	},
}

func lessString(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}

func findColumn(key string) (column, bool) {
	for _, c := range columns {
		if c.key == key {
			return c, true
		}
	}
	return column{}, false
}

// Table is a view over a list of employees; rows are addressed by their
// position on the current page.
type Table interface {
	SetRecords(records []*data.Employee)
	ToggleSort(column string) error
	Sort() (column, direction string)
	Next() bool
	Previous() bool
	CanNext() bool
	CanPrevious() bool
	PageCount() int
	PageIndex() int
	Rows() []*data.Employee
	Edit(row int) error
	Delete(row int) error
	View() *data.TableView
}

type table struct {
	sync.RWMutex
	config struct {
		pageSize int
	}
	records   []*data.Employee
	sorted    []*data.Employee
	sortKey   string
	sortOrder string
	pageIndex int
	onEdit    EditFunc
	onDelete  DeleteFunc
}

func NewTable(parameters ...any) interface {
	internal.Configurer
	Table
	Renderer
} {
	t := &table{}
	t.config.pageSize = DefaultPageSize
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case EditFunc:
			t.onEdit = p
		case DeleteFunc:
			t.onDelete = p
		case []*data.Employee:
			t.records = data.CopyEmployees(p)
		}
	}
	t.resort()
	return t
}

func (t *table) Configure(envs map[string]string) error {
	t.Lock()
	defer t.Unlock()

	if s, ok := envs["TABLE_PAGE_SIZE"]; ok && s != "" {
		pageSize, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		if pageSize <= 0 {
			return errors.New("page size must be positive")
		}
		t.config.pageSize = pageSize
	}
	t.clamp()
	return nil
}

// resort rebuilds the sorted view; sorting is stable so records that
// compare equal keep the order they were given in
func (t *table) resort() {
	t.sorted = make([]*data.Employee, len(t.records))
	copy(t.sorted, t.records)
	c, ok := findColumn(t.sortKey)
	if !ok || t.sortOrder == data.SortNone {
		return
	}
	less := c.less
	if t.sortOrder == data.SortDescending {
		less = func(a, b *data.Employee) bool { return c.less(b, a) }
	}
	sort.SliceStable(t.sorted, func(i, j int) bool {
		return less(t.sorted[i], t.sorted[j])
	})
}

// clamp resets the page to the first page if it's out of range
func (t *table) clamp() {
	if t.pageIndex >= t.pageCount() || t.pageIndex < 0 {
		t.pageIndex = 0
	}
}

func (t *table) pageCount() int {
	if len(t.sorted) == 0 {
		return 1
	}
	return (len(t.sorted) + t.config.pageSize - 1) / t.config.pageSize
}

func (t *table) page() (start, end int) {
	start = t.pageIndex * t.config.pageSize
	end = start + t.config.pageSize
	if end > len(t.sorted) {
		end = len(t.sorted)
	}
	if start > end {
		start = end
	}
	return start, end
}

func (t *table) row(row int) (*data.Employee, error) {
	start, end := t.page()
	if row < 0 || start+row >= end {
		return nil, ErrRowNotFound
	}
	return t.sorted[start+row], nil
}

// SetRecords replaces the records the table is a view of, a nil list is
// treated as an empty list.
func (t *table) SetRecords(records []*data.Employee) {
	t.Lock()
	defer t.Unlock()

	t.records = data.CopyEmployees(records)
	t.resort()
	t.clamp()
}

// ToggleSort cycles column through ascending, descending and unsorted,
// sorting by a different column replaces the current sort.
func (t *table) ToggleSort(key string) error {
	t.Lock()
	defer t.Unlock()

	c, ok := findColumn(key)
	if !ok {
		return ErrUnknownColumn
	}
	if !c.sortable {
		return ErrColumnNotSortable
	}
	switch {
	case t.sortKey != key || t.sortOrder == data.SortNone:
		t.sortKey, t.sortOrder = key, data.SortAscending
	case t.sortOrder == data.SortAscending:
		t.sortOrder = data.SortDescending
	default:
		t.sortKey, t.sortOrder = "", data.SortNone
	}
	t.resort()
	t.clamp()
	return nil
}

func (t *table) Sort() (string, string) {
	t.RLock()
	defer t.RUnlock()

	return t.sortKey, t.sortOrder
}

func (t *table) Next() bool {
	t.Lock()
	defer t.Unlock()

	if t.pageIndex+1 >= t.pageCount() {
		return false
	}
	t.pageIndex++
	return true
}

func (t *table) Previous() bool {
	t.Lock()
	defer t.Unlock()

	if t.pageIndex == 0 {
		return false
	}
	t.pageIndex--
	return true
}

func (t *table) CanNext() bool {
	t.RLock()
	defer t.RUnlock()

	return t.pageIndex+1 < t.pageCount()
}

func (t *table) CanPrevious() bool {
	t.RLock()
	defer t.RUnlock()

	return t.pageIndex > 0
}

func (t *table) PageCount() int {
	t.RLock()
	defer t.RUnlock()

	return t.pageCount()
}

func (t *table) PageIndex() int {
	t.RLock()
	defer t.RUnlock()

	return t.pageIndex
}

// Rows returns copies of the records on the current page.
func (t *table) Rows() []*data.Employee {
	t.RLock()
	defer t.RUnlock()

	start, end := t.page()
	return data.CopyEmployees(t.sorted[start:end])
}

func (t *table) Edit(row int) error {
	t.RLock()
	e, err := t.row(row)
	onEdit := t.onEdit
	t.RUnlock()
	if err != nil {
		return err
	}
	if onEdit != nil {
		onEdit(data.CopyEmployee(e))
	}
	return nil
}

func (t *table) Delete(row int) error {
	t.RLock()
	e, err := t.row(row)
	onDelete := t.onDelete
	t.RUnlock()
	if err != nil {
		return err
	}
	if onDelete != nil {
		onDelete(e.Id)
	}
	return nil
}

func (t *table) view() *data.TableView {
	view := &data.TableView{
		Columns: make([]data.ColumnView, 0, len(columns)),
		Rows:    []data.RowView{},
	}
	for _, c := range columns {
		columnView := data.ColumnView{
			Key:      c.key,
			Header:   c.header,
			Sortable: c.sortable,
		}
		if c.key == t.sortKey {
			columnView.Sort = t.sortOrder
		}
		view.Columns = append(view.Columns, columnView)
	}
	start, end := t.page()
	for i, e := range t.sorted[start:end] {
		position := start + i + 1
		cells := make([]string, 0, len(columns))
		for _, c := range columns {
			cells = append(cells, c.cell(position, e))
		}
		view.Rows = append(view.Rows, data.RowView{
			Index:    position,
			Cells:    cells,
			Employee: data.CopyEmployee(e),
		})
	}
	view.Page = data.PageView{
		Index:       t.pageIndex,
		Size:        t.config.pageSize,
		Count:       t.pageCount(),
		Total:       len(t.sorted),
		CanNext:     t.pageIndex+1 < t.pageCount(),
		CanPrevious: t.pageIndex > 0,
	}
	return view
}

// View returns the headers, the rows of the current page and the
// pagination controls.
func (t *table) View() *data.TableView {
	t.RLock()
	defer t.RUnlock()

	return t.view()
}
