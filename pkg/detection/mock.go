package detection

import "sync"

// MockDetector is a scriptable detector for tests and simulations.
// Each call to Detect returns the next scripted frame; once the script
// is exhausted the last frame repeats.
type MockDetector struct {
	mu     sync.Mutex
	frames [][]Observation
	errs   []error
	calls  int
	closed bool
}

// NewMockDetector creates a detector that replays the given frames.
func NewMockDetector(frames ...[]Observation) *MockDetector {
	return &MockDetector{frames: frames}
}

// FailWith makes the detector return err instead of observations for
// the call at index i (0-based).
func (m *MockDetector) FailWith(i int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.errs) <= i {
		m.errs = append(m.errs, nil)
	}
	m.errs[i] = err
}

// Detect returns the next scripted frame.
func (m *MockDetector) Detect(_ []byte) ([]Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++

	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if len(m.frames) == 0 {
		return nil, nil
	}
	if i >= len(m.frames) {
		i = len(m.frames) - 1
	}
	return m.frames[i], nil
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Ensure MockDetector implements Detector.
var _ Detector = (*MockDetector)(nil)

// Box is a test helper building an observation from corner coordinates.
func Box(x1, y1, x2, y2 float64) Observation {
	return Observation{
		TopLeft:     Point{X: x1, Y: y1},
		BottomRight: Point{X: x2, Y: y2},
		Confidence:  0.9,
	}
}
