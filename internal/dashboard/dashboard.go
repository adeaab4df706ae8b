// Package dashboard derives the summary shown on the dashboard page from
// a list of employees; it holds no state of its own.
package dashboard

import (
	"sort"
	"strings"

	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
)

const (
	maxActivities int = 4
	maxActive     int = 5
)

type Stats struct {
	TotalEmployees  int `json:"total_employees"`
	Departments     int `json:"departments"`
	ActiveToday     int `json:"active_today"`
	PendingRequests int `json:"pending_requests"`
}

type DepartmentStat struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Activity struct {
	Id     int64  `json:"id"`
	Name   string `json:"name"`
	Action string `json:"action"`
	Time   string `json:"time"`
	Type   string `json:"type"`
	Avatar string `json:"avatar"`
}

type Event struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Type      string `json:"type"`
	Attendees int    `json:"attendees"`
}

// Person is an employee as listed in the active and pending panels.
type Person struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Avatar      string `json:"avatar"`
}

type Summary struct {
	Stats      Stats            `json:"stats"`
	Breakdown  []DepartmentStat `json:"breakdown"`
	Activities []Activity       `json:"activities"`
	Events     []Event          `json:"events"`
	Active     []Person         `json:"active"`
	Pending    []Person         `json:"pending"`
}

var actionTemplates = []struct {
	action string
	kind   string
}{
	{"Joined {department} Department", "join"},
	{"Leave Request Approved", "leave"},
	{"Performance Review Completed", "review"},
	{"Training Program Started", "training"},
	{"Profile Updated", "update"},
}

var timeLabels = []string{"2 hours ago", "4 hours ago", "1 day ago", "2 days ago", "3 days ago"}

// Departments returns every distinct, non-empty department in the order
// it's first seen.
func Departments(employees []*data.Employee) []string {
	seen := make(map[string]struct{})
	departments := []string{}
	for _, e := range employees {
		if e == nil || e.Department == "" {
			continue
		}
		if _, ok := seen[e.Department]; ok {
			continue
		}
		seen[e.Department] = struct{}{}
		departments = append(departments, e.Department)
	}
	return departments
}

func ComputeStats(employees []*data.Employee) Stats {
	var stats Stats

	for _, e := range employees {
		if e == nil {
			continue
		}
		stats.TotalEmployees++
		if e.IsActive {
			stats.ActiveToday++
		}
		if e.RequestStatus == data.RequestStatusPending {
			stats.PendingRequests++
		}
	}
	stats.Departments = len(Departments(employees))
	return stats
}

// DepartmentBreakdown counts employees per department, the percentage is
// of all employees (including those without a department).
func DepartmentBreakdown(employees []*data.Employee) []DepartmentStat {
	counts := make(map[string]int)
	total := 0
	for _, e := range employees {
		if e == nil {
			continue
		}
		total++
		if e.Department != "" {
			counts[e.Department]++
		}
	}
	breakdown := make([]DepartmentStat, 0, len(counts))
	for name, count := range counts {
		breakdown = append(breakdown, DepartmentStat{
			Name:       name,
			Count:      count,
			Percentage: float64(count) / float64(total) * 100,
		})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].Name < breakdown[j].Name
	})
	return breakdown
}

func RecentActivities(employees []*data.Employee) []Activity {
	activities := []Activity{}
	for _, e := range employees {
		if e == nil {
			continue
		}
		if len(activities) == maxActivities {
			break
		}
		i := len(activities)
		template := actionTemplates[i%len(actionTemplates)]
		activities = append(activities, Activity{
			Id:     e.Id,
			Name:   e.Name,
			Action: strings.ReplaceAll(template.action, "{department}", e.Department),
			Time:   timeLabels[i%len(timeLabels)],
			Type:   template.kind,
			Avatar: e.Initials(),
		})
	}
	return activities
}

func people(employees []*data.Employee, limit int, match func(*data.Employee) bool) []Person {
	listed := []Person{}
	for _, e := range employees {
		if e == nil || !match(e) {
			continue
		}
		if limit > 0 && len(listed) == limit {
			break
		}
		listed = append(listed, Person{
			Id:          e.Id,
			Name:        e.Name,
			Designation: e.Designation,
			Department:  e.Department,
			Avatar:      e.Initials(),
		})
	}
	return listed
}

// ActiveEmployees returns the first five active employees.
func ActiveEmployees(employees []*data.Employee) []Person {
	return people(employees, maxActive, func(e *data.Employee) bool {
		return e.IsActive
	})
}

// PendingRequests returns every employee with a pending request.
func PendingRequests(employees []*data.Employee) []Person {
	return people(employees, 0, func(e *data.Employee) bool {
		return e.RequestStatus == data.RequestStatusPending
	})
}

func UpcomingEvents() []Event {
	return []Event{
		{Title: "Team Meeting", Date: "Aug 12", Time: "10:00 AM", Type: "meeting", Attendees: 8},
		{Title: "Performance Reviews", Date: "Aug 15", Time: "2:00 PM", Type: "review", Attendees: 15},
		{Title: "Company Retreat", Date: "Aug 20", Time: "All Day", Type: "event", Attendees: 45},
		{Title: "Training Workshop", Date: "Aug 25", Time: "9:00 AM", Type: "training", Attendees: 12},
	}
}

func Summarize(employees []*data.Employee) *Summary {
	return &Summary{
		Stats:      ComputeStats(employees),
		Breakdown:  DepartmentBreakdown(employees),
		Activities: RecentActivities(employees),
		Events:     UpcomingEvents(),
		Active:     ActiveEmployees(employees),
		Pending:    PendingRequests(employees),
	}
}
