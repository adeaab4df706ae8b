package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/dashboard"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/store"
	"github.com/antonio-alexander/go-employee-dashboard/internal/table"
	"github.com/antonio-alexander/go-employee-dashboard/internal/utilities"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

const contentTypeXlsx string = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		shutdownTimeout  time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
		timersEnabled    bool
	}
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	*mux.Router
	*http.Server
	store store.Store
	table interface {
		table.Table
		table.Renderer
	}
	cache internal.Clearer
	utilities.Logger
	utilities.Counter
	utilities.Timers
}

// NewService creates the dashboard's view server, it requires a store; a
// table is created if one isn't provided.
func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	http.Handler
} {
	router := mux.NewRouter()
	s := &service{
		Router: router,
		Server: &http.Server{
			Handler: router,
		},
		Logger: utilities.NewNopLogger(),
	}
	s.config.shutdownTimeout = 10 * time.Second
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case store.Store:
			s.store = p
		case interface {
			table.Table
			table.Renderer
		}:
			s.table = p
		case internal.Clearer:
			s.cache = p
		case utilities.Counter:
			s.Counter = p
		case utilities.Timers:
			s.Timers = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	if s.table == nil {
		s.table = table.NewTable()
	}
	s.buildRoutes()
	return s
}

func (s *service) launchServer() error {
	started := make(chan struct{})
	chErr := make(chan error, 1)
	s.Add(1)
	go func() {
		defer s.WaitGroup.Done()
		defer close(chErr)

		close(started)
		if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			chErr <- err
		}
	}()
	<-started
	select {
	case err := <-chErr:
		//KIM: here we're accounting for a situation where the server closes unexexpectedly
		// but quickly (within a second of starting); this allows us to respond to errors such as
		// the port being already used
		return err
	case <-time.After(time.Second):
		address := net.JoinHostPort(s.config.address, s.config.port)
		s.Info(s.ctx, "started server: %s", address)
		return nil
	}
}

// time starts the timer for group if timers are enabled, the returned
// function stops it
func (s *service) time(ctx context.Context, group string) func() {
	if s.Timers == nil || !s.config.timersEnabled {
		return func() {}
	}
	stop := s.Timers.Time(group)
	return func() {
		s.Trace(ctx, "%s took %v", group, stop())
	}
}

func (s *service) context(request *http.Request) context.Context {
	ctx := request.Context()
	if correlationId := getCorrelationId(request); correlationId != "" {
		return internal.CtxWithCorrelationId(ctx, correlationId)
	}
	return internal.EnsureCorrelationId(ctx)
}

func (s *service) view(message string, err error) *data.ViewResponse {
	state := s.store.Snapshot()
	response := &data.ViewResponse{
		Message: message,
		Table:   s.table.View(),
		Loading: state.Loading,
	}
	response.Filters.Departments = dashboard.Departments(state.Records)
	response.Filters.Search = state.Search
	switch {
	case err != nil:
		response.Error = err.Error()
		var validationErrs data.ValidationErrors
		if errors.As(err, &validationErrs) {
			response.Fields = validationErrs
		}
	case state.LastError != nil:
		response.Error = state.LastError.Error()
	}
	return response
}

func (s *service) endpointDefault() func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprintf(writer,
			"go-employee-dashboard\n"+
				"Version: \"%s\"\n"+
				"Git Commit: \"%s\"\n"+
				"Git Branch: \"%s\"\n",
			Version, GitCommit, GitBranch)
	}
}

func (s *service) endpointDashboard(writer http.ResponseWriter, request *http.Request) {
	ctx := s.context(request)
	defer s.time(ctx, "dashboard")()

	handleResponse(writer, nil, dashboard.Summarize(s.store.Snapshot().Records))
}

func (s *service) endpointEmployeesList(writer http.ResponseWriter, request *http.Request) {
	var search data.EmployeeSearch

	ctx := s.context(request)
	defer s.time(ctx, "employees_list")()
	if err := request.ParseForm(); err != nil {
		handleResponse(writer, badRequest{err}, s.view("", err))
		return
	}
	search.FromParams(request.Form)
	if err := s.store.ApplyFilter(ctx, search); err != nil {
		handleResponse(writer, err, s.view("", err))
		return
	}
	handleResponse(writer, nil, s.view("", nil))
	s.Trace(ctx, "executed employees_list")
}

func (s *service) endpointEmployeesSort(writer http.ResponseWriter, request *http.Request) {
	ctx := s.context(request)
	defer s.time(ctx, "employees_sort")()
	column := mux.Vars(request)[data.PathColumn]
	if err := s.table.ToggleSort(column); err != nil {
		handleResponse(writer, err, s.view("", err))
		return
	}
	handleResponse(writer, nil, s.view("", nil))
	s.Trace(ctx, "executed employees_sort: %s", column)
}

func (s *service) endpointEmployeesPage(next bool) func(http.ResponseWriter, *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		ctx := s.context(request)
		defer s.time(ctx, "employees_page")()
		if next {
			s.table.Next()
		} else {
			s.table.Previous()
		}
		handleResponse(writer, nil, s.view("", nil))
	}
}

func (s *service) endpointEmployeeCreate(writer http.ResponseWriter, request *http.Request) {
	ctx := s.context(request)
	defer s.time(ctx, "employee_create")()
	payload, err := decodePayload(request)
	if err != nil {
		handleResponse(writer, err, s.view("", err))
		return
	}
	employee, err := s.store.Create(ctx, payload)
	if err != nil {
		handleResponse(writer, err, s.view("Failed to save", err))
		return
	}
	handleResponse(writer, nil, s.view("Employee added", nil))
	s.Trace(ctx, "executed employee_create: %d", employee.Id)
}

func (s *service) endpointEmployeeUpdate(writer http.ResponseWriter, request *http.Request) {
	ctx := s.context(request)
	defer s.time(ctx, "employee_update")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, err, s.view("", err))
		return
	}
	payload, err := decodePayload(request)
	if err != nil {
		handleResponse(writer, err, s.view("", err))
		return
	}
	if _, err := s.store.Update(ctx, id, payload); err != nil {
		handleResponse(writer, err, s.view("Failed to save", err))
		return
	}
	handleResponse(writer, nil, s.view("Employee updated", nil))
	s.Trace(ctx, "executed employee_update: %d", id)
}

func (s *service) endpointEmployeeDelete(writer http.ResponseWriter, request *http.Request) {
	ctx := s.context(request)
	defer s.time(ctx, "employee_delete")()
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, err, s.view("", err))
		return
	}
	if err := s.store.Remove(ctx, id); err != nil {
		handleResponse(writer, err, s.view("Failed to delete", err))
		return
	}
	handleResponse(writer, nil, s.view("Deleted", nil))
	s.Trace(ctx, "executed employee_delete: %d", id)
}

func (s *service) endpointEmployeesExport(writer http.ResponseWriter, request *http.Request) {
	ctx := s.context(request)
	defer s.time(ctx, "employees_export")()
	writer.Header().Set("Content-Type", contentTypeXlsx)
	writer.Header().Set("Content-Disposition", `attachment; filename="employees.xlsx"`)
	if err := s.table.Export(writer); err != nil {
		s.Error(ctx, "error while exporting employees: %s", err)
		return
	}
	s.Trace(ctx, "executed employees_export")
}

func (s *service) endpointCacheClear(writer http.ResponseWriter, request *http.Request) {
	ctx := s.context(request)
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			handleResponse(writer, err)
			return
		}
		s.Trace(ctx, "executed cache_clear")
	}
	handleResponse(writer, nil)
}

func (s *service) endpointCacheCountersRead(writer http.ResponseWriter, _ *http.Request) {
	if s.Counter == nil {
		handleResponse(writer, nil, &data.CacheCounters{})
		return
	}
	handleResponse(writer, nil, s.Counter.ReadAll())
}

func (s *service) endpointCacheCountersClear(writer http.ResponseWriter, request *http.Request) {
	ctx := s.context(request)
	if s.Counter != nil {
		s.Counter.Reset()
	}
	handleResponse(writer, nil)
	s.Trace(ctx, "executed cache_counters_clear")
}

func (s *service) endpointTimersRead(writer http.ResponseWriter, _ *http.Request) {
	if s.Timers == nil {
		handleResponse(writer, nil, &data.Timers{})
		return
	}
	handleResponse(writer, nil, s.Timers.ReadAll())
}

func (s *service) endpointTimersClear(writer http.ResponseWriter, request *http.Request) {
	ctx := s.context(request)
	if s.Timers != nil {
		s.Timers.Clear()
	}
	handleResponse(writer, nil)
	s.Trace(ctx, "executed timers_clear")
}

func (s *service) buildRoutes() {
	s.Router.HandleFunc("/", s.endpointDefault()).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteDashboard, s.endpointDashboard).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesExport, s.endpointEmployeesExport).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployeesSort, s.endpointEmployeesSort).Methods(http.MethodPost)
	s.Router.HandleFunc(data.RouteEmployeesNext, s.endpointEmployeesPage(true)).Methods(http.MethodPost)
	s.Router.HandleFunc(data.RouteEmployeesPrev, s.endpointEmployeesPage(false)).Methods(http.MethodPost)
	s.Router.HandleFunc(data.RouteEmployees, s.endpointEmployeesList).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteEmployees, s.endpointEmployeeCreate).Methods(http.MethodPost)
	s.Router.HandleFunc(data.RouteEmployeesId, s.endpointEmployeeUpdate).Methods(http.MethodPut)
	s.Router.HandleFunc(data.RouteEmployeesId, s.endpointEmployeeDelete).Methods(http.MethodDelete)
	s.Router.HandleFunc(data.RouteCacheCounters, s.endpointCacheCountersRead).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteCacheCounters, s.endpointCacheCountersClear).Methods(http.MethodDelete)
	s.Router.HandleFunc(data.RouteCache, s.endpointCacheClear).Methods(http.MethodDelete)
	s.Router.HandleFunc(data.RouteTimers, s.endpointTimersRead).Methods(http.MethodGet)
	s.Router.HandleFunc(data.RouteTimers, s.endpointTimersClear).Methods(http.MethodDelete)
}

func (s *service) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port, ok := envs["SERVICE_PORT"]; ok {
		s.config.port = port
	}
	if shutdownTimeoutString, ok := envs["SERVICE_SHUTDOWN_TIMEOUT"]; ok {
		if shutdownTimeoutInt, err := strconv.Atoi(shutdownTimeoutString); err == nil {
			if timeout := time.Duration(shutdownTimeoutInt) * time.Second; timeout > 0 {
				s.config.shutdownTimeout = timeout
			}
		}
	}
	if allowCredentialsString, ok := envs["SERVICE_CORS_ALLOW_CREDENTIALS"]; ok {
		if allowCredentials, err := strconv.ParseBool(allowCredentialsString); err == nil {
			s.config.allowCredentials = allowCredentials
		}
	}
	if allowedOrigins, ok := envs["SERVICE_CORS_ALLOWED_ORIGINS"]; ok && allowedOrigins != "" {
		s.config.allowedOrigins = strings.Split(allowedOrigins, ",")
	}
	if allowedMethods, ok := envs["SERVICE_CORS_ALLOWED_METHODS"]; ok && allowedMethods != "" {
		s.config.allowedMethods = strings.Split(allowedMethods, ",")
	}
	if allowedHeaders, ok := envs["SERVICE_CORS_ALLOWED_HEADERS"]; ok && allowedHeaders != "" {
		s.config.allowedHeaders = strings.Split(allowedHeaders, ",")
	}
	if corsDisabledString, ok := envs["SERVICE_CORS_DISABLED"]; ok {
		if corsDisabled, err := strconv.ParseBool(corsDisabledString); err == nil {
			s.config.corsDisabled = corsDisabled
		}
	}
	if corsDebug, ok := envs["SERVICE_CORS_DEBUG"]; ok {
		if corsDebug, err := strconv.ParseBool(corsDebug); err == nil {
			s.config.corsDebug = corsDebug
		}
	}
	if timersEnabled := envs["SERVICE_TIMERS_ENABLED"]; timersEnabled != "" {
		s.config.timersEnabled, _ = strconv.ParseBool(timersEnabled)
	}
	if c, ok := s.table.(internal.Configurer); ok {
		if err := c.Configure(envs); err != nil {
			return err
		}
	}
	return nil
}

// Open keeps the table in step with the store and, unless
// SERVICE_PORT is empty, starts listening.
func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.store == nil {
		return errors.New("store not set")
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.unsubscribe = s.store.Subscribe(func(state store.State) {
		s.table.SetRecords(state.Records)
	})
	s.table.SetRecords(s.store.Snapshot().Records)
	if !s.config.corsDisabled {
		s.Server.Handler = cors.New(cors.Options{
			AllowedOrigins:   s.config.allowedOrigins,
			AllowCredentials: s.config.allowCredentials,
			AllowedMethods:   s.config.allowedMethods,
			AllowedHeaders:   s.config.allowedHeaders,
			Debug:            s.config.corsDebug,
		}).Handler(s.Router)
	}
	if s.config.port == "" {
		return nil
	}
	s.Server.Addr = net.JoinHostPort(s.config.address, s.config.port)
	return s.launchServer()
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.config.port != "" {
		ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
		defer cancel()
		if err := s.Server.Shutdown(ctx); err != nil {
			s.Error(ctx, "error while shutting down the server: %s", err)
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.Wait()
	return nil
}

// ServeHTTP serves the routes with cors applied once opened.
func (s *service) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	s.Server.Handler.ServeHTTP(writer, request)
}
