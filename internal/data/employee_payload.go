package data

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate     = newValidator()
	emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)
)

// EmployeePayload is an employee without an id, it's sent when creating
// and (as a full replacement) when updating an employee.
type EmployeePayload struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email_address"`
	Designation   string `json:"designation" validate:"required"`
	Department    string `json:"department" validate:"required"`
	JoiningDate   string `json:"joiningDate" validate:"required,iso_date"`
	IsActive      bool   `json:"isActive,omitempty"`
	RequestStatus string `json:"requestStatus,omitempty"`
}

func (e *EmployeePayload) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *EmployeePayload) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// ValidationErrors maps a json field name to the reason it's invalid.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, v[field]))
	}
	return "invalid employee: " + strings.Join(messages, ", ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("email_address", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate returns ValidationErrors if any field is missing or malformed.
func (e *EmployeePayload) Validate() error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	errs := make(ValidationErrors)
	for _, fieldError := range fieldErrors {
		switch fieldError.Tag() {
		default:
			errs[fieldError.Field()] = "Invalid"
		case "required":
			errs[fieldError.Field()] = "Required"
		}
	}
	return errs
}
