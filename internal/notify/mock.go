package notify

import (
	"context"
	"sync"
)

// MockSender records sends in memory, used in tests and local development.
type MockSender struct {
	mu      sync.Mutex
	sent    []MockedSend
	Ref     string
	FailErr error
}

// MockedSend is one recorded delivery.
type MockedSend struct {
	Target  string
	Message string
}

// NewMockSender creates a recording sender that returns ref for every send.
func NewMockSender(ref string) *MockSender {
	return &MockSender{Ref: ref}
}

// Send records the delivery and returns the configured reference or error.
func (m *MockSender) Send(_ context.Context, target, message string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailErr != nil {
		return "", m.FailErr
	}
	m.sent = append(m.sent, MockedSend{Target: target, Message: message})
	return m.Ref, nil
}

// Sent returns a copy of all recorded deliveries.
func (m *MockSender) Sent() []MockedSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockedSend, len(m.sent))
	copy(out, m.sent)
	return out
}
