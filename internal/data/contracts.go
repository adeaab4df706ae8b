package data

const (
	RouteEmployees        string = "/employees"
	RouteEmployeesId      string = RouteEmployees + "/{" + PathId + "}"
	RouteEmployeesIdf     string = RouteEmployees + "/%d"
	RouteEmployeesExport  string = RouteEmployees + "/export"
	RouteEmployeesSort    string = RouteEmployees + "/sort/{" + PathColumn + "}"
	RouteEmployeesNext    string = RouteEmployees + "/page/next"
	RouteEmployeesPrev    string = RouteEmployees + "/page/previous"
	RouteDashboard        string = "/dashboard"
	RouteCache            string = "/cache"
	RouteCacheCounters    string = RouteCache + "/counters"
	RouteTimers           string = "/timers"
	RouteEmployeesSortf   string = RouteEmployees + "/sort/%s"
)

const (
	PathId     string = "id"
	PathColumn string = "column"
)

const (
	ParameterDepartment string = "department"
	ParameterQuery      string = "q"
)

// ViewResponse is what the dashboard service answers with for any
// request against the employees page.
type ViewResponse struct {
	Message string           `json:"message,omitempty"`
	Table   *TableView       `json:"table,omitempty"`
	Loading bool             `json:"loading"`
	Error   string           `json:"error,omitempty"`
	Fields  ValidationErrors `json:"fields,omitempty"`
	Filters struct {
		Departments []string       `json:"departments"`
		Search      EmployeeSearch `json:"search"`
	} `json:"filters"`
}

type Timers struct {
	Totals   map[string]int64 `json:"totals,omitempty"`
	Averages map[string]int64 `json:"averages,omitempty"`
}
