package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

func GenerateId() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// Envs loads the optional env files (default: .env) without overriding
// anything already set, then returns the process environment as a map.
func Envs(files ...string) map[string]string {
	_ = godotenv.Load(files...)
	envs := make(map[string]string)
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	return envs
}

// StatusError is returned when a request is answered with a non-2xx
// status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("status code: %d; %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("status code: %d; %s", e.StatusCode, e.Status)
}

// DoRequest sends input as json (or as the query when it's url.Values)
// and, if v is provided, decodes a non-empty response into v[0].
func DoRequest(ctx context.Context, client *http.Client, uri, method string, input any, v ...any) ([]byte, error) {
	var body io.Reader

	switch input := input.(type) {
	default:
		byts, err := json.Marshal(input)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(byts)
	case nil:
	case url.Values:
		if encoded := input.Encode(); encoded != "" {
			uri += "?" + encoded
		}
	}
	request, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Correlation-Id", CorrelationIdFromCtx(ctx))
	response, err := client.Do(request)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, uri)
	}
	defer response.Body.Close()
	byts, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	switch {
	default:
		return nil, &StatusError{
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Body:       strings.TrimSpace(string(byts)),
		}
	case response.StatusCode == http.StatusNoContent:
		return []byte{}, nil
	case response.StatusCode >= 200 && response.StatusCode < 300:
		if len(v) > 0 && len(byts) > 0 {
			if err := json.Unmarshal(byts, v[0]); err != nil {
				return nil, errors.Wrap(err, "unable to decode response")
			}
		}
		return byts, nil
	}
}
