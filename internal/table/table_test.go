package table_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var departments = []string{"Engineering", "Sales", "Design"}

// generateEmployees creates n employees whose names sort in the reverse
// order of their ids
func generateEmployees(n int) []*data.Employee {
	employees := make([]*data.Employee, 0, n)
	for i := 1; i <= n; i++ {
		employees = append(employees, &data.Employee{
			Id:          int64(i),
			Name:        fmt.Sprintf("Employee %02d", n-i),
			Email:       fmt.Sprintf("employee%02d@example.com", i),
			Designation: "Engineer",
			Department:  departments[i%len(departments)],
			JoiningDate: fmt.Sprintf("2020-%02d-01", (i%12)+1),
		})
	}
	return employees
}

func ids(employees []*data.Employee) []int64 {
	var ids []int64
	for _, e := range employees {
		ids = append(ids, e.Id)
	}
	return ids
}

func TestTablePagination(t *testing.T) {
	tbl := table.NewTable(generateEmployees(12))

	assert.Equal(t, 3, tbl.PageCount())
	assert.Equal(t, 0, tbl.PageIndex())
	assert.False(t, tbl.CanPrevious())
	assert.True(t, tbl.CanNext())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(tbl.Rows()))
	assert.False(t, tbl.Previous())

	assert.True(t, tbl.Next())
	assert.Equal(t, []int64{6, 7, 8, 9, 10}, ids(tbl.Rows()))
	assert.True(t, tbl.CanPrevious())
	assert.True(t, tbl.CanNext())

	assert.True(t, tbl.Next())
	assert.Equal(t, 2, tbl.PageIndex())
	assert.Len(t, tbl.Rows(), 2)
	assert.False(t, tbl.CanNext())
	assert.True(t, tbl.CanPrevious())
	assert.False(t, tbl.Next())
	assert.Equal(t, 2, tbl.PageIndex())

	//the page resets when it no longer exists
	tbl.SetRecords(generateEmployees(7))
	assert.Equal(t, 0, tbl.PageIndex())
	assert.Equal(t, 2, tbl.PageCount())

	//but not when it still does
	assert.True(t, tbl.Next())
	tbl.SetRecords(generateEmployees(9))
	assert.Equal(t, 1, tbl.PageIndex())
}

func TestTablePageSize(t *testing.T) {
	tbl := table.NewTable(generateEmployees(12))
	err := tbl.Configure(map[string]string{"TABLE_PAGE_SIZE": "10"})
	assert.Nil(t, err)
	assert.Equal(t, 2, tbl.PageCount())

	err = tbl.Configure(map[string]string{"TABLE_PAGE_SIZE": "0"})
	assert.NotNil(t, err)
	err = tbl.Configure(map[string]string{"TABLE_PAGE_SIZE": "five"})
	assert.NotNil(t, err)
}

func TestTableEmpty(t *testing.T) {
	for name, records := range map[string][]*data.Employee{
		"Nil":   nil,
		"Empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			tbl := table.NewTable()
			tbl.SetRecords(records)
			assert.Empty(t, tbl.Rows())
			assert.Equal(t, 1, tbl.PageCount())
			assert.False(t, tbl.CanNext())
			assert.False(t, tbl.CanPrevious())
			view := tbl.View()
			assert.Len(t, view.Rows, 0)
			assert.Len(t, view.Columns, 7)
			assert.Equal(t, table.ErrRowNotFound, tbl.Edit(0))
			assert.Equal(t, table.ErrRowNotFound, tbl.Delete(0))
			buf := &bytes.Buffer{}
			assert.Nil(t, tbl.Render(buf))
			assert.Contains(t, buf.String(), "no employees found")
		})
	}
}

func TestTableSort(t *testing.T) {
	records := generateEmployees(6)
	original := data.CopyEmployees(records)
	tbl := table.NewTable(records)
	tbl.SetRecords(records)

	//unsorted to ascending
	err := tbl.ToggleSort(table.ColumnName)
	assert.Nil(t, err)
	column, direction := tbl.Sort()
	assert.Equal(t, table.ColumnName, column)
	assert.Equal(t, data.SortAscending, direction)
	assert.Equal(t, []int64{6, 5, 4, 3, 2}, ids(tbl.Rows()))

	//ascending to descending
	err = tbl.ToggleSort(table.ColumnName)
	assert.Nil(t, err)
	_, direction = tbl.Sort()
	assert.Equal(t, data.SortDescending, direction)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(tbl.Rows()))

	//descending to unsorted
	err = tbl.ToggleSort(table.ColumnName)
	assert.Nil(t, err)
	_, direction = tbl.Sort()
	assert.Equal(t, data.SortNone, direction)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(tbl.Rows()))

	//a different column replaces the sort
	err = tbl.ToggleSort(table.ColumnName)
	assert.Nil(t, err)
	err = tbl.ToggleSort(table.ColumnId)
	assert.Nil(t, err)
	column, direction = tbl.Sort()
	assert.Equal(t, table.ColumnId, column)
	assert.Equal(t, data.SortAscending, direction)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids(tbl.Rows()))
	err = tbl.ToggleSort(table.ColumnId)
	assert.Nil(t, err)
	assert.Equal(t, []int64{6, 5, 4, 3, 2}, ids(tbl.Rows()))

	//the records given are never touched
	assert.Equal(t, original, records)

	err = tbl.ToggleSort(table.ColumnActions)
	assert.Equal(t, table.ErrColumnNotSortable, err)
	err = tbl.ToggleSort("salary")
	assert.Equal(t, table.ErrUnknownColumn, err)
}

func TestTableSortStable(t *testing.T) {
	records := []*data.Employee{
		{Id: 1, Name: "Zed", Department: "Sales", JoiningDate: "2021-05-01"},
		{Id: 2, Name: "amy", Department: "Eng", JoiningDate: "2019-05-01"},
		{Id: 3, Name: "Bob", Department: "Sales", JoiningDate: "2020-05-01"},
		{Id: 4, Name: "Cat", Department: "Eng", JoiningDate: "2022-05-01T09:30:00Z"},
	}
	tbl := table.NewTable(records)

	err := tbl.ToggleSort(table.ColumnDepartment)
	assert.Nil(t, err)
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(tbl.Rows()))
	err = tbl.ToggleSort(table.ColumnDepartment)
	assert.Nil(t, err)
	assert.Equal(t, []int64{1, 3, 2, 4}, ids(tbl.Rows()))

	//strings sort regardless of case
	err = tbl.ToggleSort(table.ColumnName)
	assert.Nil(t, err)
	assert.Equal(t, []int64{2, 3, 4, 1}, ids(tbl.Rows()))

	//dates sort chronologically
	err = tbl.ToggleSort(table.ColumnJoiningDate)
	assert.Nil(t, err)
	assert.Equal(t, []int64{2, 3, 1, 4}, ids(tbl.Rows()))
}

func TestTableView(t *testing.T) {
	tbl := table.NewTable(generateEmployees(7))
	err := tbl.ToggleSort(table.ColumnId)
	require.Nil(t, err)
	err = tbl.ToggleSort(table.ColumnId)
	require.Nil(t, err)
	assert.True(t, tbl.Next())

	view := tbl.View()
	for _, c := range view.Columns {
		switch c.Key {
		case table.ColumnId:
			assert.Equal(t, data.SortDescending, c.Sort)
		case table.ColumnActions:
			assert.False(t, c.Sortable)
			assert.Empty(t, c.Sort)
		default:
			assert.True(t, c.Sortable)
			assert.Empty(t, c.Sort)
		}
	}
	require.Len(t, view.Rows, 2)

	//the id column is the position in the sorted list, not the record id
	assert.Equal(t, 6, view.Rows[0].Index)
	assert.Equal(t, "6", view.Rows[0].Cells[0])
	assert.Equal(t, int64(2), view.Rows[0].Employee.Id)
	assert.Equal(t, "7", view.Rows[1].Cells[0])
	assert.Equal(t, int64(1), view.Rows[1].Employee.Id)
	assert.Equal(t, "Feb 1, 2020", view.Rows[1].Cells[5])
	assert.Equal(t, data.PageView{
		Index:       1,
		Size:        5,
		Count:       2,
		Total:       7,
		CanNext:     false,
		CanPrevious: true,
	}, view.Page)
}

func TestTableActions(t *testing.T) {
	var edited *data.Employee
	var deleted int64

	records := generateEmployees(7)
	tbl := table.NewTable(records,
		table.EditFunc(func(e *data.Employee) { edited = e }),
		table.DeleteFunc(func(id int64) { deleted = id }))
	assert.True(t, tbl.Next())

	err := tbl.Edit(1)
	assert.Nil(t, err)
	assert.Equal(t, records[6], edited)

	err = tbl.Delete(0)
	assert.Nil(t, err)
	assert.Equal(t, int64(6), deleted)

	assert.Equal(t, table.ErrRowNotFound, tbl.Edit(2))
	assert.Equal(t, table.ErrRowNotFound, tbl.Delete(-1))
}

func TestTableRender(t *testing.T) {
	tbl := table.NewTable(generateEmployees(6))
	err := tbl.ToggleSort(table.ColumnName)
	require.Nil(t, err)

	buf := &bytes.Buffer{}
	err = tbl.Render(buf)
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "NAME ^")
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
	assert.Contains(t, lines[1], "Employee 00")
	assert.Contains(t, lines[6], "page 1 of 2 (6 employees)")
	assert.Contains(t, lines[6], "next>")
}

func TestTableExport(t *testing.T) {
	tbl := table.NewTable(generateEmployees(12))
	err := tbl.ToggleSort(table.ColumnName)
	require.Nil(t, err)

	buf := &bytes.Buffer{}
	err = tbl.Export(buf)
	require.Nil(t, err)
	f, err := excelize.OpenReader(buf)
	require.Nil(t, err)
	defer f.Close()
	rows, err := f.GetRows("Employees")
	require.Nil(t, err)
	require.Len(t, rows, 13)
	assert.Equal(t, []string{"ID", "Name", "Email", "Designation", "Department", "Joining Date"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Employee 00", rows[1][1])
	assert.Equal(t, "Employee 11", rows[12][1])
}
