package internal_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/antonio-alexander/go-employee-dashboard/internal"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type echo struct {
	Method        string `json:"method"`
	Query         string `json:"query"`
	Body          string `json:"body"`
	ContentType   string `json:"content_type"`
	CorrelationId string `json:"correlation_id"`
}

func newEchoServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/empty":
			writer.WriteHeader(http.StatusNoContent)
		case "/missing":
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte("employee not found\n"))
		default:
			body, _ := io.ReadAll(request.Body)
			_ = json.NewEncoder(writer).Encode(&echo{
				Method:        request.Method,
				Query:         request.URL.RawQuery,
				Body:          string(body),
				ContentType:   request.Header.Get("Content-Type"),
				CorrelationId: request.Header.Get("Correlation-Id"),
			})
		}
	}))
}

func TestDoRequest(t *testing.T) {
	server := newEchoServer()
	defer server.Close()
	ctx := internal.CtxWithCorrelationId(context.TODO(), "abc")

	t.Run("Query", func(t *testing.T) {
		e := &echo{}
		_, err := internal.DoRequest(ctx, server.Client(), server.URL+"/employees",
			http.MethodGet, url.Values{"department": {"Eng"}}, e)
		assert.Nil(t, err)
		assert.Equal(t, "department=Eng", e.Query)
		assert.Empty(t, e.ContentType)
		assert.Equal(t, "abc", e.CorrelationId)

		_, err = internal.DoRequest(ctx, server.Client(), server.URL+"/employees",
			http.MethodGet, url.Values{}, e)
		assert.Nil(t, err)
		assert.Empty(t, e.Query)
	})

	t.Run("Body", func(t *testing.T) {
		e := &echo{}
		_, err := internal.DoRequest(ctx, server.Client(), server.URL+"/employees",
			http.MethodPost, map[string]string{"name": "Ann"}, e)
		assert.Nil(t, err)
		assert.Equal(t, http.MethodPost, e.Method)
		assert.JSONEq(t, `{"name":"Ann"}`, e.Body)
		assert.Equal(t, "application/json", e.ContentType)
	})

	t.Run("NoContent", func(t *testing.T) {
		byts, err := internal.DoRequest(ctx, server.Client(), server.URL+"/empty",
			http.MethodDelete, nil)
		assert.Nil(t, err)
		assert.Empty(t, byts)
	})

	t.Run("Status", func(t *testing.T) {
		_, err := internal.DoRequest(ctx, server.Client(), server.URL+"/missing",
			http.MethodDelete, nil)
		var statusErr *internal.StatusError
		if assert.True(t, errors.As(err, &statusErr)) {
			assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
			assert.Equal(t, "employee not found", statusErr.Body)
		}
	})
}
