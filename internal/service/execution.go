package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/antonio-alexander/go-employee-dashboard/internal/client"
	"github.com/antonio-alexander/go-employee-dashboard/internal/data"
	"github.com/antonio-alexander/go-employee-dashboard/internal/store"
	"github.com/antonio-alexander/go-employee-dashboard/internal/table"
)

// badRequest marks an error caused by what the caller sent
type badRequest struct{ error }

func (b badRequest) Unwrap() error { return b.error }

func getCorrelationId(request *http.Request) string {
	return request.Header.Get("Correlation-Id")
}

func idFromPath(pathVariables map[string]string) (int64, error) {
	id, err := strconv.ParseInt(pathVariables[data.PathId], 10, 64)
	if err != nil {
		return 0, badRequest{fmt.Errorf("invalid id: %q", pathVariables[data.PathId])}
	}
	return id, nil
}

func decodePayload(request *http.Request) (data.EmployeePayload, error) {
	var payload data.EmployeePayload

	defer request.Body.Close()
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		return payload, badRequest{err}
	}
	return payload, nil
}

func statusCode(err error) int {
	var validationErrs data.ValidationErrors
	var statusErr *client.StatusError
	var badRequestErr badRequest

	switch {
	default:
		return http.StatusInternalServerError
	case errors.As(err, &validationErrs), errors.As(err, &badRequestErr),
		errors.Is(err, table.ErrUnknownColumn), errors.Is(err, table.ErrColumnNotSortable):
		return http.StatusBadRequest
	case errors.Is(err, table.ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrMutateDisabled):
		return http.StatusForbidden
	case errors.Is(err, store.ErrStoreClosed):
		return http.StatusServiceUnavailable
	case errors.As(err, &statusErr):
		return statusErr.StatusCode
	}
}

// handleResponse writes items[0] as json, or the error if there is
// nothing else to write; with neither it answers with no content
func handleResponse(writer http.ResponseWriter, err error, items ...interface{}) {
	var bytes []byte

	code := http.StatusOK
	if err != nil {
		code = statusCode(err)
	}
	if len(items) > 0 {
		b, errMarshal := json.Marshal(items[0])
		if errMarshal != nil {
			code, err = http.StatusInternalServerError, errMarshal
		}
		bytes = b
	}
	if bytes == nil {
		if err == nil {
			writer.WriteHeader(http.StatusNoContent)
			return
		}
		var e struct {
			Error string `json:"error"`
		}

		e.Error = err.Error()
		bytes, _ = json.Marshal(&e)
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(code)
	if _, err := writer.Write(bytes); err != nil {
		fmt.Printf("error handling response: %s\n", err)
	}
}
