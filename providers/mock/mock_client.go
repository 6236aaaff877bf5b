// Package mock provides a mock implementation of the RemoteClient interface for testing.
package mock

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/giantswarm/oauthapp/providers"
)

// Compile-time check that MockClient implements the providers.RemoteClient interface.
var _ providers.RemoteClient = (*MockClient)(nil)

// Request records a call made to the mock.
type Request struct {
	Method      string
	Path        string
	ContentType string
}

// MockClient is a mock implementation of the RemoteClient interface for testing
type MockClient struct {
	// GetFunc is called when Get() is invoked
	GetFunc func(ctx context.Context, path string) (*providers.Response, error)

	// PostFunc is called when Post() is invoked
	PostFunc func(ctx context.Context, path, contentType string) (*providers.Response, error)

	// CallCounts tracks how many times each method was called
	CallCounts map[string]int

	// Requests records every call in order
	Requests []Request

	// mu protects CallCounts and Requests from concurrent access
	mu sync.RWMutex
}

// NewMockClient creates a new mock client with default implementations.
// Get returns a GitHub-shaped user, Post returns an accepted fork.
func NewMockClient() *MockClient {
	return &MockClient{
		CallCounts: make(map[string]int),
		GetFunc: func(ctx context.Context, path string) (*providers.Response, error) {
			return &providers.Response{
				Status: http.StatusOK,
				Data:   []byte(`{"id":1,"login":"octocat"}`),
			}, nil
		},
		PostFunc: func(ctx context.Context, path, contentType string) (*providers.Response, error) {
			return &providers.Response{
				Status: http.StatusAccepted,
				Data:   []byte(`{"id":2,"full_name":"octocat/Hello-World"}`),
			}, nil
		},
	}
}

// Get issues a mock GET request
func (m *MockClient) Get(ctx context.Context, path string) (*providers.Response, error) {
	// Release the lock before calling the user function, which may call back into the mock.
	m.mu.Lock()
	m.CallCounts["Get"]++
	m.Requests = append(m.Requests, Request{Method: http.MethodGet, Path: path})
	fn := m.GetFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, fmt.Errorf("GetFunc not configured")
	}
	return fn(ctx, path)
}

// Post issues a mock POST request
func (m *MockClient) Post(ctx context.Context, path, contentType string) (*providers.Response, error) {
	m.mu.Lock()
	m.CallCounts["Post"]++
	m.Requests = append(m.Requests, Request{Method: http.MethodPost, Path: path, ContentType: contentType})
	fn := m.PostFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, fmt.Errorf("PostFunc not configured")
	}
	return fn(ctx, path, contentType)
}

// RespondWith configures both Get and Post to return status and body.
func (m *MockClient) RespondWith(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn := func() (*providers.Response, error) {
		return &providers.Response{Status: status, Data: []byte(body)}, nil
	}
	m.GetFunc = func(context.Context, string) (*providers.Response, error) { return fn() }
	m.PostFunc = func(context.Context, string, string) (*providers.Response, error) { return fn() }
}

// FailWith configures both Get and Post to return err.
func (m *MockClient) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetFunc = func(context.Context, string) (*providers.Response, error) { return nil, err }
	m.PostFunc = func(context.Context, string, string) (*providers.Response, error) { return nil, err }
}

// ResetCallCounts resets all call counters
func (m *MockClient) ResetCallCounts() {
	m.mu.Lock()
	m.CallCounts = make(map[string]int)
	m.Requests = nil
	m.mu.Unlock()
}

// GetCallCount returns the number of times a method was called
func (m *MockClient) GetCallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCounts[method]
}

// LastRequest returns the most recent call, if any.
func (m *MockClient) LastRequest() (Request, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.Requests) == 0 {
		return Request{}, false
	}
	return m.Requests[len(m.Requests)-1], true
}
