package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/cache"
	"github.com/antonio-alexander/go-employee-dashboard/internal/client"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/store"
	"github.com/antonio-alexander/go-employee-dashboard/internal/utilities"

	"github.com/pkg/errors"
)

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

type scenarioConfig struct {
	readInterval     time.Duration
	updateInterval   time.Duration
	scenarioDuration time.Duration
}

func main() {
	args := os.Args[1:]
	envs := internal.Envs()
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func configure(envs map[string]string) scenarioConfig {
	config := scenarioConfig{
		readInterval:     100 * time.Millisecond,
		updateInterval:   250 * time.Millisecond,
		scenarioDuration: 10 * time.Second,
	}
	if s := envs["SCENARIO_READ_INTERVAL"]; s != "" {
		i, _ := strconv.Atoi(s)
		config.readInterval = time.Duration(i) * time.Millisecond
	}
	if s := envs["SCENARIO_UPDATE_INTERVAL"]; s != "" {
		i, _ := strconv.Atoi(s)
		config.updateInterval = time.Duration(i) * time.Millisecond
	}
	if s := envs["SCENARIO_DURATION"]; s != "" {
		i, _ := strconv.Atoi(s)
		config.scenarioDuration = time.Duration(i) * time.Second
	}
	return config
}

func scenarioEmployee() data.EmployeePayload {
	id := internal.GenerateId()
	return data.EmployeePayload{
		Name:        "Scenario " + id[:8],
		Email:       "scenario." + id[:8] + "@example.com",
		Designation: "designation-0",
		Department:  "Scenario",
		JoiningDate: time.Now().Format("2006-01-02"),
		IsActive:    true,
	}
}

// repeat calls fx every interval until stop is closed
func repeat(ctx context.Context, wg *sync.WaitGroup, start, stop <-chan struct{},
	interval time.Duration, fx func(context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		<-start
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				fx(ctx)
			}
		}
	}()
}

// scenarioLostUpdate loads continuously (alternating between two searches)
// while employees are updated through the same store, once stopped the
// store must hold the last update that succeeded
func scenarioLostUpdate(ctx context.Context, config scenarioConfig, logger utilities.Logger,
	c client.Client) error {
	const correlationId string = "scenario_lost_update"

	var wg sync.WaitGroup
	var mu sync.Mutex
	var lastDesignation string

	ctx = internal.CtxWithCorrelationId(ctx, correlationId)
	s := store.NewStore(c, logger)
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer s.Close(context.Background())
	payload := scenarioEmployee()
	employee, err := s.Create(ctx, payload)
	if err != nil {
		return err
	}
	defer func(id int64) {
		if err := s.Remove(ctx, id); err != nil {
			logger.Error(ctx, "error while deleting employee (%d): %s", id, err)
			return
		}
		logger.Info(ctx, "deleted employee: %d", id)
	}(employee.Id)
	logger.Info(ctx, "created employee: %d", employee.Id)

	start, stop := make(chan struct{}), make(chan struct{})
	searches := []data.EmployeeSearch{{}, {Department: payload.Department}}
	loads := 0
	repeat(ctx, &wg, start, stop, config.readInterval, func(ctx context.Context) {
		search := searches[loads%len(searches)]
		loads++
		if err := s.Load(ctx, search); err != nil {
			logger.Error(ctx, "error while loading employees: %s", err)
		}
	})
	updates := 0
	repeat(ctx, &wg, start, stop, config.updateInterval, func(ctx context.Context) {
		updates++
		p := payload
		p.Designation = fmt.Sprintf("designation-%d", updates)
		mu.Lock()
		defer mu.Unlock()
		if _, err := s.Update(ctx, employee.Id, p); err != nil {
			logger.Error(ctx, "error while updating employee: %s", err)
			return
		}
		lastDesignation = p.Designation
	})
	close(start)
	select {
	case <-time.After(config.scenarioDuration):
	case <-ctx.Done():
	}
	close(stop)
	wg.Wait()

	for _, e := range s.Snapshot().Records {
		if e.Id != employee.Id {
			continue
		}
		if e.Designation != lastDesignation {
			return errors.Errorf("lost update: have %q, expected %q", e.Designation, lastDesignation)
		}
		logger.Info(ctx, "%d loads and %d updates, no updates lost", loads, updates)
		return nil
	}
	return errors.Errorf("employee (%d) not found after %d loads", employee.Id, loads)
}

// scenarioStampedingHerd reads the same search with several clients while
// another client keeps writing, each write invalidates the writer's cache
func scenarioStampedingHerd(ctx context.Context, config scenarioConfig, logger utilities.Logger,
	counter utilities.Counter, clients ...client.Client) error {
	const correlationId string = "scenario_stampeding_herd"
	const minClients int = 2

	var wg sync.WaitGroup

	if len(clients) < minClients {
		return errors.New("not enough clients provided")
	}
	ctx = internal.CtxWithCorrelationId(ctx, correlationId)
	payload := scenarioEmployee()
	employee, err := clients[0].EmployeeCreate(ctx, payload)
	if err != nil {
		return err
	}
	defer func(id int64) {
		_ = clients[0].EmployeeDelete(ctx, id)
		logger.Info(ctx, "deleted employee: %d", id)
	}(employee.Id)
	logger.Info(ctx, "created employee: %d", employee.Id)

	start, stop := make(chan struct{}), make(chan struct{})
	updates := 0
	repeat(ctx, &wg, start, stop, config.updateInterval, func(ctx context.Context) {
		updates++
		p := payload
		p.Designation = fmt.Sprintf("designation-%d", updates)
		if _, err := clients[0].EmployeeUpdate(ctx, employee.Id, p); err != nil {
			logger.Error(ctx, "error while updating employee: %s", err)
		}
	})
	search := data.EmployeeSearch{Department: payload.Department}
	for i := 1; i < len(clients); i++ {
		ctx := internal.CtxWithCorrelationId(ctx, fmt.Sprintf("%s_%d", correlationId, i))
		c := clients[i]
		repeat(ctx, &wg, start, stop, config.readInterval, func(ctx context.Context) {
			if _, err := c.EmployeesList(ctx, search); err != nil {
				logger.Error(ctx, "error while listing employees: %s", err)
			}
		})
	}
	counter.Reset()
	close(start)
	select {
	case <-time.After(config.scenarioDuration):
	case <-ctx.Done():
	}
	close(stop)
	wg.Wait()

	key, _ := search.ToKey()
	if ratio, total := counter.HitRatio(key); total > 0 {
		count := counter.Read(key)
		logger.Info(ctx, "cache hit miss ratio (%d/%d): %0.2f%%, %d results discarded",
			count.Hits, total, ratio*100, count.Discarded)
	}
	return nil
}

func Main(args []string, envs map[string]string, osSignal chan os.Signal) error {
	var clients []client.Client
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create logger
	logger := utilities.NewLogger()
	_ = logger.Configure(envs)
	counter := utilities.NewCounter()

	//print version info
	logger.Info(ctx, "scenarios: go-employee-dashboard v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	nClients, _ := strconv.Atoi(envs["N_CLIENTS"])
	if nClients <= 0 {
		nClients = 1
	}
	for range nClients {
		//create cache
		cache := cache.New(envs, logger)
		if cache != nil {
			if err := cache.Configure(envs); err != nil {
				return err
			}
			if err := cache.Open(ctx); err != nil {
				return err
			}
			defer func() {
				if err := cache.Close(context.Background()); err != nil {
					logger.Error(ctx, "error while closing cache: %s", err)
				}
			}()
		}

		//create client
		client := client.NewClient(cache, logger, counter)
		if err := client.Configure(envs); err != nil {
			return err
		}
		if err := client.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Error(ctx, "error while closing client: %s", err)
			}
		}()
		clients = append(clients, client)
	}

	// execute scenario
	config := configure(envs)
	var err error
	switch scenario := envs["SCENARIO"]; scenario {
	default:
		err = errors.Errorf("unsupported scenario: %s", scenario)
	case "lost_update":
		logger.Info(ctx, "executing %s scenario", scenario)
		err = scenarioLostUpdate(ctx, config, logger, clients[0])
	case "stampeding_herd":
		logger.Info(ctx, "executing %s scenario", scenario)
		err = scenarioStampedingHerd(ctx, config, logger, counter, clients...)
	}
	cancel()
	wg.Wait()
	return err
}
