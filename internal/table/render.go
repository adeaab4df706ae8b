package table

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/antonio-alexander/go-employee-dashboard/internal/data"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const exportSheet string = "Employees"

// Renderer writes the table out.
type Renderer interface {
	// Render writes the current page as aligned text.
	Render(w io.Writer) error

	// Export writes every page, in the current sort order, as an xlsx
	// workbook.
	Export(w io.Writer) error
}

func sortIndicator(order string) string {
	switch order {
	case data.SortAscending:
		return " ^"
	case data.SortDescending:
		return " v"
	}
	return ""
}

func (t *table) Render(w io.Writer) error {
	t.RLock()
	view := t.view()
	t.RUnlock()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, 0, len(view.Columns))
	for _, c := range view.Columns {
		headers = append(headers, strings.ToUpper(c.Header)+sortIndicator(c.Sort))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range view.Rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row.Cells, "\t")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(view.Rows) == 0 {
		if _, err := fmt.Fprintln(w, "no employees found"); err != nil {
			return err
		}
	}
	previous, next := "<previous", "next>"
	if !view.Page.CanPrevious {
		previous = "-"
	}
	if !view.Page.CanNext {
		next = "-"
	}
	_, err := fmt.Fprintf(w, "%s  page %d of %d (%d employees)  %s\n",
		previous, view.Page.Index+1, view.Page.Count, view.Page.Total, next)
	return err
}

func (t *table) Export(w io.Writer) error {
	t.RLock()
	sorted := data.CopyEmployees(t.sorted)
	t.RUnlock()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	exported := make([]column, 0, len(columns))
	header := make([]interface{}, 0, len(columns))
	for _, c := range columns {
		if c.key == ColumnActions {
			continue
		}
		exported = append(exported, c)
		header = append(header, c.header)
	}
	if err := sw.SetColWidth(2, len(exported), 24); err != nil {
		return err
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: style}); err != nil {
		return err
	}
	for i, e := range sorted {
		row := make([]interface{}, 0, len(exported))
		for _, c := range exported {
			row = append(row, c.cell(i+1, e))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return errors.Wrapf(err, "unable to write row %d", i+1)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
