package data

import (
	"encoding/json"
	"net/url"
	"strings"
)

type EmployeeSearch struct {
	Department string `json:"department,omitempty"`
	Query      string `json:"q,omitempty"`
}

func (e *EmployeeSearch) IsZero() bool {
	return e.Department == "" && e.Query == ""
}

func (e *EmployeeSearch) ToParams() url.Values {
	params := make(url.Values)
	if e.Department != "" {
		params.Set(ParameterDepartment, e.Department)
	}
	if e.Query != "" {
		params.Set(ParameterQuery, e.Query)
	}
	return params
}

func (e *EmployeeSearch) FromParams(params url.Values) {
	for key, value := range params {
		if len(value) == 0 {
			continue
		}
		switch strings.ToLower(key) {
		case ParameterDepartment:
			e.Department = value[0]
		case ParameterQuery:
			e.Query = value[0]
		}
	}
}

// ToKey returns a stable key for the search, the empty search has the
// key "all".
func (e *EmployeeSearch) ToKey() (string, error) {
	if e.IsZero() {
		return "all", nil
	}
	params := e.ToParams()
	return params.Encode(), nil
}

func (e *EmployeeSearch) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeeSearch) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
