package data

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
)

const (
	RequestStatusPending  string = "pending"
	RequestStatusApproved string = "approved"
	RequestStatusRejected string = "rejected"
)

const dateLayout string = "2006-01-02"

type Employee struct {
	Id            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Designation   string `json:"designation"`
	Department    string `json:"department"`
	JoiningDate   string `json:"joiningDate"` //ISO-8601, usually just the date
	IsActive      bool   `json:"isActive,omitempty"`
	RequestStatus string `json:"requestStatus,omitempty"`
}

func (e *Employee) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Employee) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// JoiningTime parses JoiningDate, it returns the zero time if the
// date is empty or can't be parsed.
func (e *Employee) JoiningTime() time.Time {
	t, _ := ParseDate(e.JoiningDate)
	return t
}

// Initials returns at most two upper-case initials of the employee name.
func (e *Employee) Initials() string {
	var initials []rune

	for _, word := range strings.Fields(e.Name) {
		r := []rune(word)[0]
		initials = append(initials, unicode.ToUpper(r))
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}

// ToPayload returns the editable fields of the employee, this is what an
// edit form is pre-populated with.
func (e *Employee) ToPayload() EmployeePayload {
	return EmployeePayload{
		Name:          e.Name,
		Email:         e.Email,
		Designation:   e.Designation,
		Department:    e.Department,
		JoiningDate:   e.JoiningDate,
		IsActive:      e.IsActive,
		RequestStatus: e.RequestStatus,
	}
}

func CopyEmployee(e *Employee) *Employee {
	employee := &Employee{}
	*employee = *e
	return employee
}

func CopyEmployees(employees []*Employee) []*Employee {
	copies := make([]*Employee, 0, len(employees))
	for _, e := range employees {
		if e == nil {
			continue
		}
		copies = append(copies, CopyEmployee(e))
	}
	return copies
}

// ParseDate accepts either a plain date or an RFC 3339 timestamp.
func ParseDate(iso string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, iso); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, iso)
}

// FormatDate renders an ISO-8601 date for display, an empty or invalid
// date renders as an empty string.
func FormatDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := ParseDate(iso)
	if err != nil {
		return ""
	}
	return t.Format("Jan 2, 2006")
}
