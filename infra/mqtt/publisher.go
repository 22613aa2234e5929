package mqtt

import "sync"

// MockPublisher records published messages for tests.
type MockPublisher struct {
	mu       sync.Mutex
	Messages map[string][][]byte
	Closed   bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Messages: make(map[string][][]byte)}
}

// Publish stores the payload under its topic.
func (m *MockPublisher) Publish(topic string, _ byte, _ bool, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.Messages[topic] = append(m.Messages[topic], buf)
	return nil
}

// Published returns the payloads recorded for the topic.
func (m *MockPublisher) Published(topic string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Messages[topic]
}

// Close marks the publisher as closed.
func (m *MockPublisher) Close() {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
}
