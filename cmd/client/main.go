package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/antonio-alexander/go-employee-dashboard/internal"
	"github.com/antonio-alexander/go-employee-dashboard/internal/cache"
	"github.com/antonio-alexander/go-employee-dashboard/internal/client"
	"github.com/antonio-alexander/go-employee-dashboard/internal/dashboard"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/store"
	"github.com/antonio-alexander/go-employee-dashboard/internal/table"

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

func main() {
	args := os.Args[1:]
	envs := internal.Envs()
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, os.Stdout, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func employeeId(envs map[string]string) (int64, error) {
	id, err := strconv.ParseInt(envs["EMPLOYEE_ID"], 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "EMPLOYEE_ID")
	}
	return id, nil
}

func employeePayload(envs map[string]string) (data.EmployeePayload, error) {
	var payload data.EmployeePayload

	if err := json.Unmarshal([]byte(envs["EMPLOYEE_JSON"]), &payload); err != nil {
		return payload, errors.Wrap(err, "EMPLOYEE_JSON")
	}
	if err := payload.Validate(); err != nil {
		return payload, err
	}
	return payload, nil
}

func printJson(w io.Writer, item any) error {
	bytes, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bytes))
	return err
}

// newTable creates a table of the employees using SORT and PAGE
func newTable(envs map[string]string, employees []*data.Employee) (interface {
	table.Table
	table.Renderer
}, error) {
	t := table.NewTable(employees)
	if err := t.Configure(envs); err != nil {
		return nil, err
	}
	if column := envs["SORT"]; column != "" {
		if err := t.ToggleSort(column); err != nil {
			return nil, errors.Wrapf(err, "SORT: %s", column)
		}
		if envs["SORT_ORDER"] == data.SortDescending {
			_ = t.ToggleSort(column)
		}
	}
	if s := envs["PAGE"]; s != "" {
		page, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrap(err, "PAGE")
		}
		for i := 1; i < page; i++ {
			if !t.Next() {
				break
			}
		}
	}
	return t, nil
}

func Main(args []string, envs map[string]string, stdout io.Writer, osSignal chan os.Signal) error {
	fmt.Fprintf(os.Stderr, "client: go-employee-dashboard v%s (%s) built from: %s\n",
		Version, GitCommit, GitBranch)

	//create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
		case <-osSignal:
			cancel()
		}
	}()
	ctx = internal.EnsureCorrelationId(ctx)

	//create cache
	cache := cache.New(envs)
	if cache != nil {
		if err := cache.Configure(envs); err != nil {
			return err
		}
		if err := cache.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "error while closing cache: %s\n", err)
			}
		}()
	}

	//create client
	client := client.NewClient(cache)
	if err := client.Configure(envs); err != nil {
		return err
	}
	if err := client.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "error while closing client: %s\n", err)
		}
	}()

	//create store
	store := store.NewStore(client)
	if err := store.Configure(envs); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "error while closing store: %s\n", err)
		}
	}()

	// execute command
	search := data.EmployeeSearch{
		Department: envs["DEPARTMENT"],
		Query:      envs["QUERY"],
	}
	switch command := envs["COMMAND"]; command {
	default:
		return errors.Errorf("unsupported command: %s", command)
	case "employees_list":
		if err := store.Load(ctx, search); err != nil {
			return err
		}
		t, err := newTable(envs, store.Snapshot().Records)
		if err != nil {
			return err
		}
		return t.Render(stdout)
	case "employees_export":
		if err := store.Load(ctx, search); err != nil {
			return err
		}
		employees := store.Snapshot().Records
		t, err := newTable(envs, employees)
		if err != nil {
			return err
		}
		output := envs["OUTPUT"]
		if output == "" {
			output = "employees.xlsx"
		}
		file, err := os.Create(output)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := t.Export(file); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %d employees to %s\n", len(employees), output)
	case "employee_create":
		payload, err := employeePayload(envs)
		if err != nil {
			return err
		}
		employee, err := store.Create(ctx, payload)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%d employees after refresh\n", len(store.Snapshot().Records))
		return printJson(stdout, employee)
	case "employee_update":
		id, err := employeeId(envs)
		if err != nil {
			return err
		}
		payload, err := employeePayload(envs)
		if err != nil {
			return err
		}
		employee, err := store.Update(ctx, id, payload)
		if err != nil {
			return err
		}
		return printJson(stdout, employee)
	case "employee_delete":
		id, err := employeeId(envs)
		if err != nil {
			return err
		}
		return store.Remove(ctx, id)
	case "dashboard":
		if err := store.Load(ctx, search); err != nil {
			return err
		}
		return printJson(stdout, dashboard.Summarize(store.Snapshot().Records))
	}
	return nil
}
