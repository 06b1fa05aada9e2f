package provider

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a provider that replays scripted responses. It backs the CLI's
// offline mode and doubles as a test fixture.
type Mock struct {
	name      string
	responses []string

	mu    sync.Mutex
	calls int
	err   error
}

// NewMock creates a mock provider cycling through the given responses.
// With no responses it echoes a canned acknowledgement.
func NewMock(name string, responses ...string) *Mock {
	if name == "" {
		name = "mock"
	}
	return &Mock{name: name, responses: responses}
}

// FailWith makes every subsequent Generate call return err. Pass nil to
// restore normal operation.
func (m *Mock) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many Generate calls the mock has served.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Name returns the mock's identifier.
func (m *Mock) Name() string { return m.name }

// Available always reports true.
func (m *Mock) Available() bool { return true }

// Generate returns the next scripted response.
func (m *Mock) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, &Error{Provider: m.name, Message: "scripted failure", Err: m.err}
	}

	var content string
	if len(m.responses) > 0 {
		content = m.responses[m.calls%len(m.responses)]
	} else {
		content = fmt.Sprintf("[simulated response %d]", m.calls+1)
	}
	m.calls++

	return &Response{Content: content, Provider: m.name, Model: req.Model}, nil
}
