package dashboard_test

import (
	"testing"

	"github.com/antonio-alexander/go-employee-dashboard/internal/dashboard"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"

	"github.com/stretchr/testify/assert"
)

func employees() []*data.Employee {
	return []*data.Employee{
		{Id: 10, Name: "alice johnson", Department: "Engineering", IsActive: true},
		{Id: 11, Name: "Bob", Department: "Sales", RequestStatus: data.RequestStatusPending},
		{Id: 12, Name: "Carol Ann White", Department: "Engineering", IsActive: true,
			RequestStatus: data.RequestStatusApproved},
		{Id: 13, Name: "Dan Brown", Department: "Design", RequestStatus: data.RequestStatusPending},
		{Id: 14, Name: "Erin Green", Department: "Sales"},
		{Id: 15, Name: "Frank"},
		nil,
		{Id: 16, Name: "Gina Li", Department: "Engineering"},
		{Id: 17, Name: "Hank Hill", Department: "Design"},
	}
}

func TestDepartments(t *testing.T) {
	assert.Equal(t, []string{"Engineering", "Sales", "Design"}, dashboard.Departments(employees()))
	assert.Equal(t, []string{}, dashboard.Departments(nil))
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, dashboard.Stats{
		TotalEmployees:  8,
		Departments:     3,
		ActiveToday:     2,
		PendingRequests: 2,
	}, dashboard.ComputeStats(employees()))
	assert.Equal(t, dashboard.Stats{}, dashboard.ComputeStats(nil))
}

func TestDepartmentBreakdown(t *testing.T) {
	breakdown := dashboard.DepartmentBreakdown(employees())
	assert.Equal(t, []dashboard.DepartmentStat{
		{Name: "Engineering", Count: 3, Percentage: 37.5},
		{Name: "Design", Count: 2, Percentage: 25},
		{Name: "Sales", Count: 2, Percentage: 25},
	}, breakdown)
	assert.Empty(t, dashboard.DepartmentBreakdown(nil))
}

func TestRecentActivities(t *testing.T) {
	activities := dashboard.RecentActivities(employees())
	assert.Len(t, activities, 4)
	assert.Equal(t, dashboard.Activity{
		Id:     10,
		Name:   "alice johnson",
		Action: "Joined Engineering Department",
		Time:   "2 hours ago",
		Type:   "join",
		Avatar: "AJ",
	}, activities[0])
	assert.Equal(t, "Leave Request Approved", activities[1].Action)
	assert.Equal(t, "B", activities[1].Avatar)
	assert.Equal(t, "CA", activities[2].Avatar)
	assert.Equal(t, "2 days ago", activities[3].Time)
	assert.Equal(t, "training", activities[3].Type)

	assert.Len(t, dashboard.RecentActivities(employees()[:2]), 2)
	assert.Empty(t, dashboard.RecentActivities(nil))
}

func TestActiveEmployees(t *testing.T) {
	active := dashboard.ActiveEmployees(employees())
	if assert.Len(t, active, 2) {
		assert.Equal(t, dashboard.Person{Id: 10, Name: "alice johnson",
			Department: "Engineering", Avatar: "AJ"}, active[0])
		assert.Equal(t, int64(12), active[1].Id)
	}

	//at most five are listed
	var many []*data.Employee
	for i := 0; i < 7; i++ {
		many = append(many, &data.Employee{Id: int64(i), Name: "X", IsActive: true})
	}
	assert.Len(t, dashboard.ActiveEmployees(many), 5)
	assert.Empty(t, dashboard.ActiveEmployees(nil))
}

func TestPendingRequests(t *testing.T) {
	pending := dashboard.PendingRequests(employees())
	if assert.Len(t, pending, 2) {
		assert.Equal(t, int64(11), pending[0].Id)
		assert.Equal(t, "Dan Brown", pending[1].Name)
		assert.Equal(t, "Design", pending[1].Department)
		assert.Equal(t, "DB", pending[1].Avatar)
	}
	assert.Empty(t, dashboard.PendingRequests(nil))
}

func TestSummarize(t *testing.T) {
	summary := dashboard.Summarize(employees())
	assert.Equal(t, 8, summary.Stats.TotalEmployees)
	assert.Len(t, summary.Breakdown, 3)
	assert.Len(t, summary.Activities, 4)
	assert.Equal(t, dashboard.UpcomingEvents(), summary.Events)
	assert.Len(t, summary.Events, 4)
	assert.Len(t, summary.Active, 2)
	assert.Len(t, summary.Pending, 2)
}
