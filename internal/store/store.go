package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/client"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/utilities"

	"github.com/pkg/errors"
)

var (
	ErrStoreClosed    = errors.New("store closed")
	ErrMutateDisabled = errors.New("mutation disabled")
)

// State is a point in time copy of what the store holds, it's safe to
// keep and modify.
type State struct {
	Records   []*data.Employee
	Loading   bool
	LastError error
	Search    data.EmployeeSearch
}

// Store owns the local list of employees and keeps it in step with the
// remote api.
type Store interface {
	Load(ctx context.Context, search data.EmployeeSearch) error
	Create(ctx context.Context, payload data.EmployeePayload) (*data.Employee, error)
	Remove(ctx context.Context, id int64) error
	Update(ctx context.Context, id int64, payload data.EmployeePayload) (*data.Employee, error)
	ApplyFilter(ctx context.Context, search data.EmployeeSearch) error
	Snapshot() State
	internal.Notifier[State]
}

// mutation is a committed write; it's replayed over the result of any
// load that started before it committed
type mutation struct {
	sequence uint64
	apply    func([]*data.Employee) []*data.Employee
}

type store struct {
	sync.RWMutex
	notifyMu  sync.Mutex
	pending   []State
	notifying bool
	config    struct {
		loadTimeout    time.Duration
		mutateDisabled bool
	}
	client        client.Client
	timers        utilities.Timers
	records       []*data.Employee
	search        data.EmployeeSearch
	requested     data.EmployeeSearch
	lastError     error
	inFlight      int
	loadsInFlight int
	generation    uint64
	sequence      uint64
	journal       []mutation
	listeners     map[int]func(State)
	listenerId    int
	opened        bool
	closed        bool
	utilities.Logger
}

func NewStore(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Store
} {
	s := &store{
		Logger:    utilities.NewNopLogger(),
		records:   []*data.Employee{},
		listeners: make(map[int]func(State)),
	}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case client.Client:
			s.client = p
		case utilities.Timers:
			s.timers = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	return s
}

func (s *store) time(group string) func() time.Duration {
	if s.timers == nil {
		return func() time.Duration { return 0 }
	}
	return s.timers.Time(group)
}

func (s *store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.loadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.loadTimeout)
}

func (s *store) snapshot() State {
	return State{
		Records:   data.CopyEmployees(s.records),
		Loading:   s.inFlight > 0,
		LastError: s.lastError,
		Search:    s.search,
	}
}

// notify queues the current state for every listener; states are
// delivered in order by whichever call is already delivering, so a
// listener may call back into the store
func (s *store) notify() {
	s.notifyMu.Lock()
	s.RLock()
	s.pending = append(s.pending, s.snapshot())
	s.RUnlock()
	if s.notifying {
		s.notifyMu.Unlock()
		return
	}
	s.notifying = true
	for len(s.pending) > 0 {
		state := s.pending[0]
		s.pending = s.pending[1:]
		s.notifyMu.Unlock()
		for _, fx := range s.listenersCopy() {
			fx(state)
		}
		s.notifyMu.Lock()
	}
	s.notifying = false
	s.notifyMu.Unlock()
}

func (s *store) listenersCopy() []func(State) {
	s.RLock()
	defer s.RUnlock()

	listeners := make([]func(State), 0, len(s.listeners))
	for _, fx := range s.listeners {
		listeners = append(listeners, fx)
	}
	return listeners
}

// begin marks an operation as in flight
func (s *store) begin() error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.inFlight++
	return nil
}

// commit applies a successful write to the local list and journals it
// if a load could still overwrite it
func (s *store) commit(apply func([]*data.Employee) []*data.Employee) {
	s.records = apply(s.records)
	if s.loadsInFlight == 0 {
		return
	}
	s.sequence++
	s.journal = append(s.journal, mutation{
		sequence: s.sequence,
		apply:    apply,
	})
}

func (s *store) mutable() error {
	s.RLock()
	defer s.RUnlock()

	if s.config.mutateDisabled {
		return ErrMutateDisabled
	}
	return nil
}

func (s *store) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if loadTimeout, ok := envs["STORE_LOAD_TIMEOUT"]; ok && loadTimeout != "" {
		i, err := strconv.Atoi(loadTimeout)
		if err != nil {
			return err
		}
		s.config.loadTimeout = time.Duration(i) * time.Second
	}
	if mutateDisabled, ok := envs["STORE_MUTATE_DISABLED"]; ok {
		s.config.mutateDisabled, _ = strconv.ParseBool(mutateDisabled)
	}
	return nil
}

// Open attaches the store, it issues a single load with no filters; a
// failed load is recorded rather than returned.
func (s *store) Open(ctx context.Context) error {
	s.Lock()
	if s.client == nil {
		s.Unlock()
		return errors.New("client not set")
	}
	if s.opened {
		s.Unlock()
		return nil
	}
	s.opened = true
	s.Unlock()
	if err := s.Load(ctx, data.EmployeeSearch{}); err != nil {
		s.Error(ctx, "error while loading employees: %s", err)
	}
	return nil
}

func (s *store) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	s.closed = true
	s.listeners = make(map[int]func(State))
	return nil
}

func (s *store) Snapshot() State {
	s.RLock()
	defer s.RUnlock()

	return s.snapshot()
}

// Subscribe registers fx, it's called with every state change in order
// and may call back into the store.
func (s *store) Subscribe(fx func(State)) func() {
	s.Lock()
	defer s.Unlock()

	s.listenerId++
	id := s.listenerId
	s.listeners[id] = fx
	return func() {
		s.Lock()
		defer s.Unlock()

		delete(s.listeners, id)
	}
}

// Load replaces the local list with what the api returns for search,
// a response is discarded if a newer load has started since.
func (s *store) Load(ctx context.Context, search data.EmployeeSearch) error {
	defer s.time("store.load")()

	s.Lock()
	if s.closed {
		s.Unlock()
		return ErrStoreClosed
	}
	s.generation++
	generation, sequence := s.generation, s.sequence
	s.inFlight++
	s.loadsInFlight++
	s.requested = search
	s.Unlock()
	s.notify()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	employees, err := s.client.EmployeesList(ctx, search)

	s.Lock()
	s.inFlight--
	s.loadsInFlight--
	stale := generation != s.generation
	switch {
	case stale:
		s.Debug(ctx, "store: discarding stale load (%d < %d)", generation, s.generation)
	case err != nil:
		s.lastError = err
		s.requested = s.search
	default:
		records := dedupe(employees)
		for _, m := range s.journal {
			if m.sequence > sequence {
				records = m.apply(records)
			}
		}
		s.records, s.search, s.lastError = records, search, nil
	}
	if s.loadsInFlight == 0 {
		s.journal = nil
	}
	s.Unlock()
	s.notify()
	if err != nil && !stale {
		return err
	}
	return nil
}

// ApplyFilter loads with search only if it differs from the search last
// requested.
func (s *store) ApplyFilter(ctx context.Context, search data.EmployeeSearch) error {
	s.RLock()
	unchanged := s.requested == search
	s.RUnlock()
	if unchanged {
		return nil
	}
	return s.Load(ctx, search)
}

// Create sends payload to the api, the created employee is appended to
// the local list and then the list is loaded again using the search
// last requested; the result of that reload doesn't affect the result of
// the create.
func (s *store) Create(ctx context.Context, payload data.EmployeePayload) (*data.Employee, error) {
	defer s.time("store.create")()

	if err := s.mutable(); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.notify()
	callCtx, cancel := s.withTimeout(ctx)
	employee, err := s.client.EmployeeCreate(callCtx, payload)
	cancel()
	s.Lock()
	s.inFlight--
	if err != nil {
		s.lastError = err
		s.Unlock()
		s.notify()
		return nil, err
	}
	created := data.CopyEmployee(employee)
	s.commit(func(records []*data.Employee) []*data.Employee {
		if indexOf(records, created.Id) >= 0 {
			return records
		}
		return append(records, data.CopyEmployee(created))
	})
	search := s.requested
	s.Unlock()
	s.notify()
	if err := s.Load(ctx, search); err != nil {
		s.Error(ctx, "error while refreshing employees after create: %s", err)
	}
	return employee, nil
}

// Remove deletes the employee, the local copy is only removed once the
// api has confirmed it.
func (s *store) Remove(ctx context.Context, id int64) error {
	defer s.time("store.remove")()

	if err := s.mutable(); err != nil {
		return err
	}
	if err := s.begin(); err != nil {
		return err
	}
	s.notify()
	callCtx, cancel := s.withTimeout(ctx)
	err := s.client.EmployeeDelete(callCtx, id)
	cancel()
	s.Lock()
	s.inFlight--
	if err != nil {
		s.lastError = err
	} else {
		s.commit(func(records []*data.Employee) []*data.Employee {
			filtered := make([]*data.Employee, 0, len(records))
			for _, e := range records {
				if e.Id != id {
					filtered = append(filtered, e)
				}
			}
			return filtered
		})
	}
	s.Unlock()
	s.notify()
	return err
}

// Update replaces the employee with payload, the local copy is replaced
// with what the api returns.
func (s *store) Update(ctx context.Context, id int64, payload data.EmployeePayload) (*data.Employee, error) {
	defer s.time("store.update")()

	if err := s.mutable(); err != nil {
		return nil, err
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.notify()
	callCtx, cancel := s.withTimeout(ctx)
	employee, err := s.client.EmployeeUpdate(callCtx, id, payload)
	cancel()
	s.Lock()
	s.inFlight--
	if err != nil {
		s.lastError = err
		s.Unlock()
		s.notify()
		return nil, err
	}
	updated := data.CopyEmployee(employee)
	updated.Id = id
	s.commit(func(records []*data.Employee) []*data.Employee {
		replaced := make([]*data.Employee, len(records))
		copy(replaced, records)
		if i := indexOf(replaced, id); i >= 0 {
			replaced[i] = data.CopyEmployee(updated)
		}
		return replaced
	})
	s.Unlock()
	s.notify()
	return employee, nil
}

func indexOf(records []*data.Employee, id int64) int {
	for i, e := range records {
		if e.Id == id {
			return i
		}
	}
	return -1
}

// dedupe copies employees, keeping the first record for any id
func dedupe(employees []*data.Employee) []*data.Employee {
	seen := make(map[int64]struct{}, len(employees))
	records := make([]*data.Employee, 0, len(employees))
	for _, e := range employees {
		if e == nil {
			continue
		}
		if _, ok := seen[e.Id]; ok {
			continue
		}
		seen[e.Id] = struct{}{}
		records = append(records, data.CopyEmployee(e))
	}
	return records
}
