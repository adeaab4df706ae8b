package data

const (
	SortNone       string = ""
	SortAscending  string = "asc"
	SortDescending string = "desc"
)

type ColumnView struct {
	Key      string `json:"key"`
	Header   string `json:"header"`
	Sortable bool   `json:"sortable"`
	Sort     string `json:"sort,omitempty"`
}

type RowView struct {
	Index    int       `json:"index"` //1-based display position, not the employee id
	Cells    []string  `json:"cells"`
	Employee *Employee `json:"employee"`
}

type PageView struct {
	Index       int  `json:"index"`
	Size        int  `json:"size"`
	Count       int  `json:"count"`
	Total       int  `json:"total"`
	CanNext     bool `json:"can_next"`
	CanPrevious bool `json:"can_previous"`
}

type TableView struct {
	Columns []ColumnView `json:"columns"`
	Rows    []RowView    `json:"rows"`
	Page    PageView     `json:"page"`
}
