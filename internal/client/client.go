package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/cache"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/utilities"

	"github.com/pkg/errors"
)

const defaultApiUrl string = "http://localhost:5001"

// Client speaks to the remote employees api.
type Client interface {
	EmployeesList(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error)
	EmployeeCreate(ctx context.Context, payload data.EmployeePayload) (*data.Employee, error)
	EmployeeUpdate(ctx context.Context, id int64, payload data.EmployeePayload) (*data.Employee, error)
	EmployeeDelete(ctx context.Context, id int64) error
}

// StatusError is returned when the api answers with a non-2xx status.
type StatusError = internal.StatusError

type client struct {
	sync.RWMutex
	config struct {
		apiUrl        string
		timeout       int64
		sslCaFile     string
		sslCrtFile    string
		sslKeyFile    string
		cacheDisabled bool
	}
	address string
	cache   cache.Cache
	cacheMu sync.Mutex
	epoch   uint64
	utilities.Logger
	utilities.Counter
	*http.Client
}

func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{
		Client: &http.Client{},
		Logger: utilities.NewNopLogger(),
	}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case cache.Cache:
			c.cache = p
		case utilities.Logger:
			c.Logger = p
		case utilities.Counter:
			c.Counter = p
		case *http.Client:
			c.Client = p
		}
	}
	return c
}

func (c *client) cacheEnabled() bool {
	return c.cache != nil && !c.config.cacheDisabled
}

// invalidate drops every cached search, any write can change the
// result of any search; the epoch moves so a list already in flight
// won't write its older result back
func (c *client) invalidate(ctx context.Context) {
	if !c.cacheEnabled() {
		return
	}
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.epoch++
	if err := c.cache.Clear(ctx); err != nil {
		c.Error(ctx, "error while clearing cache: %s", err)
	}
}

func (c *client) cacheEpoch() uint64 {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	return c.epoch
}

func (c *client) count(searchKey string, outcome utilities.Outcome) {
	if c.Counter != nil {
		c.Count(searchKey, outcome)
	}
}

// cacheWrite stores employees for search unless a write was made since
// epoch was read
func (c *client) cacheWrite(ctx context.Context, epoch uint64, search data.EmployeeSearch, employees []*data.Employee) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if epoch != c.epoch {
		searchKey, _ := search.ToKey()
		c.count(searchKey, utilities.OutcomeDiscarded)
		c.Trace(ctx, "employees search (%s) invalidated while in flight, not caching", searchKey)
		return
	}
	if err := c.cache.EmployeesWrite(ctx, search, employees...); err != nil {
		c.Error(ctx, "error while writing employees to cache: %s", err)
	}
}

func (c *client) Configure(envs map[string]string) error {
	c.config.apiUrl = defaultApiUrl
	c.config.timeout = 10
	if apiUrl, ok := envs["CLIENT_API_URL"]; ok && apiUrl != "" {
		c.config.apiUrl = apiUrl
	}
	if timeout, ok := envs["CLIENT_TIMEOUT"]; ok && timeout != "" {
		i, err := strconv.ParseInt(timeout, 10, 64)
		if err != nil {
			return err
		}
		c.config.timeout = i
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	if cacheDisabled, ok := envs["CACHE_DISABLED"]; ok {
		c.config.cacheDisabled, _ = strconv.ParseBool(cacheDisabled)
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	u, err := url.Parse(c.config.apiUrl)
	if err != nil {
		return errors.Wrap(err, "invalid api url")
	}
	switch u.Scheme {
	default:
		return errors.Errorf("unsupported protocol: %s", u.Scheme)
	case "http", "https":
		c.address = strings.TrimSuffix(u.String(), "/")
	}
	if !c.cacheEnabled() {
		c.Debug(ctx, "client: cache disabled")
	}
	c.Client.Timeout = time.Duration(c.config.timeout) * time.Second
	if c.Client.Transport == nil {
		transport, err := getTlsConfig(c.config.sslCaFile, c.config.sslCrtFile,
			c.config.sslKeyFile)
		if err != nil {
			return err
		}
		c.Client.Transport = transport
	}
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.Client.CloseIdleConnections()
	return nil
}

func (c *client) EmployeesList(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	var employees []*data.Employee
	var epoch uint64

	searchKey, _ := search.ToKey()
	if c.cacheEnabled() {
		epoch = c.cacheEpoch()
		employees, err := c.cache.EmployeesRead(ctx, search)
		if err == nil {
			c.count(searchKey, utilities.OutcomeHit)
			return employees, nil
		}
		c.count(searchKey, utilities.OutcomeMiss)
		c.Trace(ctx, "cache miss for employees search (%s): %s", searchKey, err)
	}
	if _, err := internal.DoRequest(ctx, c.Client, c.address+data.RouteEmployees,
		http.MethodGet, search.ToParams(), &employees); err != nil {
		return nil, err
	}
	if employees == nil {
		employees = []*data.Employee{}
	}
	if c.cacheEnabled() {
		c.cacheWrite(ctx, epoch, search, employees)
	}
	return employees, nil
}

func (c *client) EmployeeCreate(ctx context.Context, payload data.EmployeePayload) (*data.Employee, error) {
	employee := &data.Employee{}
	if _, err := internal.DoRequest(ctx, c.Client, c.address+data.RouteEmployees,
		http.MethodPost, &payload, employee); err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return employee, nil
}

func (c *client) EmployeeUpdate(ctx context.Context, id int64, payload data.EmployeePayload) (*data.Employee, error) {
	employee := &data.Employee{}
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	if _, err := internal.DoRequest(ctx, c.Client, uri, http.MethodPut, &data.Employee{
		Id:            id,
		Name:          payload.Name,
		Email:         payload.Email,
		Designation:   payload.Designation,
		Department:    payload.Department,
		JoiningDate:   payload.JoiningDate,
		IsActive:      payload.IsActive,
		RequestStatus: payload.RequestStatus,
	}, employee); err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return employee, nil
}

func (c *client) EmployeeDelete(ctx context.Context, id int64) error {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	if _, err := internal.DoRequest(ctx, c.Client, uri, http.MethodDelete, nil); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}
