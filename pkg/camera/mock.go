package camera

import (
	"sync"
)

// MockSource is a FrameSource returning canned JPEG payloads, for
// tests and the simulator. The frames need not be valid JPEG when the
// consumer is a mock detector.
type MockSource struct {
	mu     sync.Mutex
	frames [][]byte
	errs   []error
	calls  int
	closed bool
}

// NewMockSource creates a source replaying the given frames; the last
// frame repeats once the script is exhausted. With no frames a small
// placeholder payload is returned.
func NewMockSource(frames ...[]byte) *MockSource {
	return &MockSource{frames: frames}
}

// FailWith makes the capture at call index i return err.
func (m *MockSource) FailWith(i int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.errs) <= i {
		m.errs = append(m.errs, nil)
	}
	m.errs[i] = err
}

// CaptureJPEG returns the next scripted frame.
func (m *MockSource) CaptureJPEG() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++

	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if len(m.frames) == 0 {
		return []byte("frame"), nil
	}
	if i >= len(m.frames) {
		i = len(m.frames) - 1
	}
	return m.frames[i], nil
}

// Calls returns how many captures were requested.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the source closed.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Ensure MockSource implements FrameSource.
var _ FrameSource = (*MockSource)(nil)
