package llm

import (
	"context"
	"iter"
	"sync"
)

// MockClient is a test double for Client and Streamer.
// Stream yields Chunks in order, then StreamErr if set.
type MockClient struct {
	Response  *Response
	Err       error // returned by Complete, and by Stream before any chunk
	Chunks    []string
	StreamErr error

	mu    sync.Mutex
	Calls []Request // records requests sent
}

func (m *MockClient) record(req Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
}

// CallCount returns the number of requests recorded so far.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request.
func (m *MockClient) LastCall() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}
	}
	return m.Calls[len(m.Calls)-1]
}

// Complete records the call and returns the mock response.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.record(req)
	return m.Response, m.Err
}

// Stream records the call and yields the scripted chunks.
func (m *MockClient) Stream(ctx context.Context, req Request) iter.Seq2[string, error] {
	m.record(req)
	return func(yield func(string, error) bool) {
		if m.Err != nil {
			yield("", m.Err)
			return
		}
		for _, c := range m.Chunks {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if m.StreamErr != nil {
			yield("", m.StreamErr)
		}
	}
}
