// Package apitest provides an in-memory stand-in for the remote employees
// api so the client, store and service can be tested without one.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/antonio-alexander/go-employee-dashboard/internal/data"

	"github.com/gorilla/mux"
)

type hold struct {
	arrived chan struct{}
	release chan struct{}
}

type Server struct {
	sync.Mutex
	*httptest.Server
	router    *mux.Router
	employees map[int64]*data.Employee
	nextId    int64
	requests  map[string]int
	failures  map[string]int //map[method]status code
	holds     []*hold
	lastQuery map[string]string
}

// NewServer starts a server seeded with employees, ids are kept as given.
func NewServer(employees ...*data.Employee) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		employees: make(map[int64]*data.Employee),
		requests:  make(map[string]int),
		failures:  make(map[string]int),
		nextId:    1,
	}
	for _, e := range employees {
		s.employees[e.Id] = data.CopyEmployee(e)
		if e.Id >= s.nextId {
			s.nextId = e.Id + 1
		}
	}
	s.buildRoutes()
	s.Server = httptest.NewServer(s.router)
	return s
}

// Envs returns the client configuration pointing at the server.
func (s *Server) Envs() map[string]string {
	return map[string]string{
		"CLIENT_API_URL": s.URL,
		"CLIENT_TIMEOUT": "5",
	}
}

// Fail makes every request with method answer with statusCode, a status
// code of zero stops failing.
func (s *Server) Fail(method string, statusCode int) {
	s.Lock()
	defer s.Unlock()

	if statusCode == 0 {
		delete(s.failures, method)
		return
	}
	s.failures[method] = statusCode
}

// Requests returns the number of requests received for method.
func (s *Server) Requests(method string) int {
	s.Lock()
	defer s.Unlock()

	return s.requests[method]
}

// LastQuery returns the query parameters of the last list request.
func (s *Server) LastQuery() map[string]string {
	s.Lock()
	defer s.Unlock()

	return s.lastQuery
}

// Employees returns what the server currently holds, ordered by id.
func (s *Server) Employees() []*data.Employee {
	s.Lock()
	defer s.Unlock()

	return s.sorted(func(*data.Employee) bool { return true })
}

// Put writes an employee behind the client's back.
func (s *Server) Put(e *data.Employee) {
	s.Lock()
	defer s.Unlock()

	s.employees[e.Id] = data.CopyEmployee(e)
	if e.Id >= s.nextId {
		s.nextId = e.Id + 1
	}
}

// HoldNextList holds the next list request after its result has been
// computed; arrived is closed once that happens and the response is only
// written after release is called.
func (s *Server) HoldNextList() (arrived <-chan struct{}, release func()) {
	s.Lock()
	defer s.Unlock()

	h := &hold{
		arrived: make(chan struct{}),
		release: make(chan struct{}),
	}
	s.holds = append(s.holds, h)
	var once sync.Once
	return h.arrived, func() { once.Do(func() { close(h.release) }) }
}

func (s *Server) sorted(match func(*data.Employee) bool) []*data.Employee {
	employees := make([]*data.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if match(e) {
			employees = append(employees, data.CopyEmployee(e))
		}
	}
	sort.Slice(employees, func(i, j int) bool {
		return employees[i].Id < employees[j].Id
	})
	return employees
}

// count records the request and reports a configured failure
func (s *Server) count(method string) int {
	s.Lock()
	defer s.Unlock()

	s.requests[method]++
	return s.failures[method]
}

func matches(e *data.Employee, search data.EmployeeSearch) bool {
	if search.Department != "" && e.Department != search.Department {
		return false
	}
	if search.Query == "" {
		return true
	}
	query := strings.ToLower(search.Query)
	for _, field := range []string{e.Name, e.Email, e.Designation, e.Department} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func writeJson(writer http.ResponseWriter, statusCode int, item any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(item)
}

func writeError(writer http.ResponseWriter, statusCode int) {
	writeJson(writer, statusCode, map[string]string{
		"error": http.StatusText(statusCode),
	})
}

func idFromPath(request *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(request)[data.PathId], 10, 64)
}

func (s *Server) endpointList(writer http.ResponseWriter, request *http.Request) {
	var search data.EmployeeSearch
	var h *hold

	search.FromParams(request.URL.Query())
	s.Lock()
	s.lastQuery = make(map[string]string)
	for key := range request.URL.Query() {
		s.lastQuery[key] = request.URL.Query().Get(key)
	}
	employees := s.sorted(func(e *data.Employee) bool { return matches(e, search) })
	if len(s.holds) > 0 {
		h, s.holds = s.holds[0], s.holds[1:]
	}
	s.Unlock()
	if h != nil {
		close(h.arrived)
		select {
		case <-h.release:
		case <-request.Context().Done():
			return
		}
	}
	writeJson(writer, http.StatusOK, employees)
}

func (s *Server) endpointCreate(writer http.ResponseWriter, request *http.Request) {
	var payload data.EmployeePayload

	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeError(writer, http.StatusBadRequest)
		return
	}
	s.Lock()
	employee := &data.Employee{
		Id:            s.nextId,
		Name:          payload.Name,
		Email:         payload.Email,
		Designation:   payload.Designation,
		Department:    payload.Department,
		JoiningDate:   payload.JoiningDate,
		IsActive:      payload.IsActive,
		RequestStatus: payload.RequestStatus,
	}
	s.nextId++
	s.employees[employee.Id] = data.CopyEmployee(employee)
	s.Unlock()
	writeJson(writer, http.StatusCreated, employee)
}

func (s *Server) endpointUpdate(writer http.ResponseWriter, request *http.Request) {
	var employee data.Employee

	id, err := idFromPath(request)
	if err != nil {
		writeError(writer, http.StatusBadRequest)
		return
	}
	if err := json.NewDecoder(request.Body).Decode(&employee); err != nil {
		writeError(writer, http.StatusBadRequest)
		return
	}
	employee.Id = id
	s.Lock()
	_, found := s.employees[id]
	if found {
		s.employees[id] = data.CopyEmployee(&employee)
	}
	s.Unlock()
	if !found {
		writeError(writer, http.StatusNotFound)
		return
	}
	writeJson(writer, http.StatusOK, &employee)
}

func (s *Server) endpointDelete(writer http.ResponseWriter, request *http.Request) {
	id, err := idFromPath(request)
	if err != nil {
		writeError(writer, http.StatusBadRequest)
		return
	}
	s.Lock()
	_, found := s.employees[id]
	delete(s.employees, id)
	s.Unlock()
	if !found {
		writeError(writer, http.StatusNotFound)
		return
	}
	writeJson(writer, http.StatusOK, map[string]any{})
}

func (s *Server) buildRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if statusCode := s.count(r.Method); statusCode != 0 {
				writeError(w, statusCode)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	s.router.HandleFunc(data.RouteEmployees, s.endpointList).Methods(http.MethodGet)
	s.router.HandleFunc(data.RouteEmployees, s.endpointCreate).Methods(http.MethodPost)
	s.router.HandleFunc(data.RouteEmployeesId, s.endpointUpdate).Methods(http.MethodPut)
	s.router.HandleFunc(data.RouteEmployeesId, s.endpointDelete).Methods(http.MethodDelete)
}
