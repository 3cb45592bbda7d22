package core

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

type statusResponse struct {
	Height int64 `json:"height"`
}

func TestRequest(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "http://localhost:5010/status",
		httpmock.NewStringResponder(200, `{"height": 42}`))
	httpmock.RegisterResponder("POST", "http://localhost:5010/transactions",
		httpmock.NewStringResponder(400, `{"error":"insufficient fee"}`))

	c := NewHTTPClient(10*time.Second, 0)
	result := &statusResponse{}
	err := c.Request(context.Background(), http.MethodGet, "http://localhost:5010/status", nil, result)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), result.Height)

	err = c.Request(context.Background(), http.MethodPost, "http://localhost:5010/transactions", map[string]string{"a": "b"}, nil)
	assert.Regexp(t, `\[400\] \{"error":"insufficient fee"\}`, err)
}

func TestRequestWithRetry(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder("GET", "http://localhost:5010/status",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(503, "unavailable"), nil
			}
			return httpmock.NewStringResponse(200, `{"height": 7}`), nil
		})

	c := NewHTTPClient(10*time.Second, 5).WithRetryDelay(time.Millisecond)
	result := &statusResponse{}
	err := c.RequestWithRetry(context.Background(), http.MethodGet, "http://localhost:5010/status", nil, result)
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, int64(7), result.Height)
}

func TestRequestWithRetryExhausted(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "http://localhost:5010/status",
		httpmock.NewStringResponder(500, "down"))

	c := NewHTTPClient(10*time.Second, 2).WithRetryDelay(time.Millisecond)
	err := c.RequestWithRetry(context.Background(), http.MethodGet, "http://localhost:5010/status", nil, nil)
	assert.Regexp(t, `\[500\] down`, err)
	assert.Equal(t, 3, httpmock.GetTotalCallCount())
}
