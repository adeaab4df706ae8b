package data_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/antonio-alexander/go-employee-dashboard/internal/data"

	"github.com/stretchr/testify/assert"
)

func TestEmployeePayloadValidate(t *testing.T) {
	valid := data.EmployeePayload{
		Name:        "Alice Johnson",
		Email:       "alice.j+work@example.co.uk",
		Designation: "Engineer",
		Department:  "Engineering",
		JoiningDate: "2021-03-15",
	}
	assert.Nil(t, valid.Validate())

	cases := map[string]struct {
		mutate   func(p *data.EmployeePayload)
		expected data.ValidationErrors
	}{
		"MissingName": {
			mutate:   func(p *data.EmployeePayload) { p.Name = "" },
			expected: data.ValidationErrors{"name": "Required"},
		},
		"BadEmail": {
			mutate:   func(p *data.EmployeePayload) { p.Email = "alice@example" },
			expected: data.ValidationErrors{"email": "Invalid"},
		},
		"BadDate": {
			mutate:   func(p *data.EmployeePayload) { p.JoiningDate = "15/03/2021" },
			expected: data.ValidationErrors{"joiningDate": "Invalid"},
		},
		"Timestamp": {
			mutate: func(p *data.EmployeePayload) { p.JoiningDate = "2021-03-15T08:00:00Z" },
		},
		"Empty": {
			mutate: func(p *data.EmployeePayload) { *p = data.EmployeePayload{} },
			expected: data.ValidationErrors{
				"name":        "Required",
				"email":       "Required",
				"designation": "Required",
				"department":  "Required",
				"joiningDate": "Required",
			},
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			payload := valid
			c.mutate(&payload)
			err := payload.Validate()
			if c.expected == nil {
				assert.Nil(t, err)
				return
			}
			var validationErrs data.ValidationErrors
			if assert.True(t, errors.As(err, &validationErrs)) {
				assert.Equal(t, c.expected, validationErrs)
			}
		})
	}
	err := data.ValidationErrors{"name": "Required", "email": "Invalid"}
	assert.Equal(t, "invalid employee: email: Invalid, name: Required", err.Error())
}

func TestEmployee(t *testing.T) {
	e := &data.Employee{Id: 3, Name: "  carol ann  white ", JoiningDate: "2019-01-20"}
	assert.Equal(t, "CA", e.Initials())
	assert.Equal(t, 2019, e.JoiningTime().Year())
	assert.Equal(t, "Jan 20, 2019", data.FormatDate(e.JoiningDate))
	assert.Equal(t, "", data.FormatDate(""))
	assert.Equal(t, "", data.FormatDate("not a date"))
	assert.True(t, (&data.Employee{JoiningDate: "bad"}).JoiningTime().IsZero())
	assert.Equal(t, "", (&data.Employee{}).Initials())

	payload := e.ToPayload()
	assert.Equal(t, e.Name, payload.Name)
	assert.Len(t, data.CopyEmployees([]*data.Employee{e, nil}), 1)
}

func TestEmployeeSearch(t *testing.T) {
	var search data.EmployeeSearch

	key, _ := search.ToKey()
	assert.Equal(t, "all", key)
	assert.Empty(t, search.ToParams())

	search.FromParams(url.Values{"department": {"Sales"}, "q": {"bob"}, "other": {"x"}})
	assert.Equal(t, data.EmployeeSearch{Department: "Sales", Query: "bob"}, search)
	key, _ = search.ToKey()
	assert.Equal(t, "department=Sales&q=bob", key)
	assert.False(t, search.IsZero())
}
