package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/freegames/claimer/internal/httpclient"
)

// MockHTTPClient implements a mock HTTP client for testing
type MockHTTPClient struct {
	mu       sync.RWMutex
	routes   map[string]MockResponse
	Requests []*httpclient.Request
}

// MockResponse represents a mock HTTP response
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{
		routes: make(map[string]MockResponse),
	}
}

// RegisterResponse registers a mock response for a given URL suffix
func (m *MockHTTPClient) RegisterResponse(url string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[url] = resp
}

// RegisterJSONResponse is a helper to register a JSON body with status 200
func (m *MockHTTPClient) RegisterJSONResponse(url string, body []byte) {
	m.RegisterResponse(url, MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	})
}

// Send implements the httpclient.Client interface
func (m *MockHTTPClient) Send(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	for route, resp := range m.routes {
		if strings.HasSuffix(req.URL, route) {
			if resp.StatusCode >= 400 {
				return nil, httpclient.NewError(resp.StatusCode, resp.Body)
			}
			return &httpclient.Response{
				StatusCode: resp.StatusCode,
				Body:       resp.Body,
				Headers:    resp.Headers,
			}, nil
		}
	}

	return nil, httpclient.NewError(http.StatusNotFound, []byte("Not Found"))
}
