package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/antonio-alexander/go-employee-dashboard/internal/apitest"
	"github.com/antonio-alexander/go-employee-dashboard/internal/dashboard"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed() []*data.Employee {
	return []*data.Employee{
		{Id: 1, Name: "Ann Lee", Email: "ann@example.com", Designation: "Engineer",
			Department: "Eng", JoiningDate: "2020-01-01", IsActive: true},
		{Id: 2, Name: "Ben Ray", Email: "ben@example.com", Designation: "Seller",
			Department: "Sales", JoiningDate: "2021-01-01"},
		{Id: 3, Name: "Cal Poe", Email: "cal@example.com", Designation: "Engineer",
			Department: "Eng", JoiningDate: "2022-01-01"},
	}
}

func testEnvs(server *apitest.Server, envs map[string]string) map[string]string {
	merged := server.Envs()
	for key, value := range envs {
		merged[key] = value
	}
	return merged
}

func TestMainEmployeesList(t *testing.T) {
	server := apitest.NewServer(seed()...)
	defer server.Close()

	stdout := &bytes.Buffer{}
	err := Main(nil, testEnvs(server, map[string]string{
		"COMMAND":    "employees_list",
		"DEPARTMENT": "Eng",
		"SORT":       "name",
		"SORT_ORDER": "desc",
	}), stdout, make(chan os.Signal, 1))
	assert.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "NAME v")
	assert.Contains(t, lines[1], "Cal Poe")
	assert.Contains(t, lines[2], "Ann Lee")
	assert.Equal(t, map[string]string{"department": "Eng"}, server.LastQuery())
}

func TestMainEmployeesExport(t *testing.T) {
	server := apitest.NewServer(seed()...)
	defer server.Close()

	output := filepath.Join(t.TempDir(), "employees.xlsx")
	err := Main(nil, testEnvs(server, map[string]string{
		"COMMAND": "employees_export",
		"OUTPUT":  output,
	}), &bytes.Buffer{}, make(chan os.Signal, 1))
	assert.Nil(t, err)
	info, err := os.Stat(output)
	require.Nil(t, err)
	assert.NotZero(t, info.Size())
}

func TestMainEmployeeMutate(t *testing.T) {
	server := apitest.NewServer(seed()...)
	defer server.Close()

	payload, _ := json.Marshal(data.EmployeePayload{
		Name:        "Dee Fox",
		Email:       "dee@example.com",
		Designation: "Designer",
		Department:  "Design",
		JoiningDate: "2023-01-01",
	})
	stdout := &bytes.Buffer{}
	err := Main(nil, testEnvs(server, map[string]string{
		"COMMAND":       "employee_create",
		"EMPLOYEE_JSON": string(payload),
	}), stdout, make(chan os.Signal, 1))
	assert.Nil(t, err)
	created := &data.Employee{}
	assert.Nil(t, json.Unmarshal(stdout.Bytes(), created))
	assert.Equal(t, int64(4), created.Id)
	//the list is loaded again after the create
	assert.Equal(t, 1, server.Requests(http.MethodGet))

	stdout.Reset()
	err = Main(nil, testEnvs(server, map[string]string{
		"COMMAND":       "employee_update",
		"EMPLOYEE_ID":   "4",
		"EMPLOYEE_JSON": strings.Replace(string(payload), "Designer", "Lead Designer", 1),
	}), stdout, make(chan os.Signal, 1))
	assert.Nil(t, err)
	assert.Contains(t, stdout.String(), "Lead Designer")

	err = Main(nil, testEnvs(server, map[string]string{
		"COMMAND":     "employee_delete",
		"EMPLOYEE_ID": "4",
	}), stdout, make(chan os.Signal, 1))
	assert.Nil(t, err)
	assert.Len(t, server.Employees(), 3)

	//invalid payloads never reach the api
	err = Main(nil, testEnvs(server, map[string]string{
		"COMMAND":       "employee_create",
		"EMPLOYEE_JSON": `{"name":"x"}`,
	}), stdout, make(chan os.Signal, 1))
	assert.NotNil(t, err)
	assert.Equal(t, 1, server.Requests(http.MethodPost))

	err = Main(nil, testEnvs(server, map[string]string{
		"COMMAND": "employee_delete",
	}), stdout, make(chan os.Signal, 1))
	assert.NotNil(t, err)
}

func TestMainMutateDisabled(t *testing.T) {
	server := apitest.NewServer(seed()...)
	defer server.Close()

	err := Main(nil, testEnvs(server, map[string]string{
		"COMMAND":               "employee_delete",
		"EMPLOYEE_ID":           "1",
		"STORE_MUTATE_DISABLED": "true",
	}), &bytes.Buffer{}, make(chan os.Signal, 1))
	assert.ErrorIs(t, err, store.ErrMutateDisabled)
	assert.Equal(t, 0, server.Requests(http.MethodDelete))
	assert.Len(t, server.Employees(), 3)
}

func TestMainDashboard(t *testing.T) {
	server := apitest.NewServer(seed()...)
	defer server.Close()

	stdout := &bytes.Buffer{}
	err := Main(nil, testEnvs(server, map[string]string{
		"COMMAND": "dashboard",
	}), stdout, make(chan os.Signal, 1))
	assert.Nil(t, err)
	summary := &dashboard.Summary{}
	assert.Nil(t, json.Unmarshal(stdout.Bytes(), summary))
	assert.Equal(t, 3, summary.Stats.TotalEmployees)
	assert.Equal(t, 1, summary.Stats.ActiveToday)

	err = Main(nil, testEnvs(server, map[string]string{
		"COMMAND": "employees_sing",
	}), stdout, make(chan os.Signal, 1))
	assert.NotNil(t, err)
}
