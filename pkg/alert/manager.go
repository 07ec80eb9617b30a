// Package alert maintains the deduplicated, cooldown-gated alert log
// shown to the reviewer.
package alert

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/proctorlabs/go-vigil/pkg/status"
)

// DefaultCooldown is how long a message suppresses duplicates of itself.
const DefaultCooldown = 10 * time.Second

// ErrNotFound is returned when dismissing an unknown alert id.
var ErrNotFound = errors.New("alert not found")

// Alert is one emitted notification. Entries are immutable once in the
// log; the log only changes by prepending or by explicit dismissal.
type Alert struct {
	ID        string       `json:"id"`
	Message   string       `json:"message"`
	Type      status.Level `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
}

// Manager owns the alert log and the per-message cooldown bookkeeping.
//
// Dedup keys on the exact message string. The cooldown clock is the
// emission time, tracked separately from the log so that dismissing an
// alert does not reopen its cooldown window.
type Manager struct {
	cooldown time.Duration
	logger   *slog.Logger

	mu          sync.RWMutex
	alerts      []Alert // most recent first
	lastEmitted map[string]time.Time
	onEmit      func(Alert)
}

// Option configures a Manager.
type Option func(*Manager)

// WithCooldown overrides the per-message cooldown.
func WithCooldown(d time.Duration) Option {
	return func(m *Manager) { m.cooldown = d }
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithOnEmit registers a callback invoked for every emitted alert.
// The callback runs on the triggering goroutine and must not block.
func WithOnEmit(fn func(Alert)) Option {
	return func(m *Manager) { m.onEmit = fn }
}

// SetOnEmit sets the emission callback after construction, for wiring
// that has to happen once the consumer exists.
func (m *Manager) SetOnEmit(fn func(Alert)) {
	m.mu.Lock()
	m.onEmit = fn
	m.mu.Unlock()
}

// NewManager creates an empty alert manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		cooldown:    DefaultCooldown,
		lastEmitted: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// ShouldEmit reports whether a message is outside its cooldown window
// at the given instant. Pure read; no state changes.
func (m *Manager) ShouldEmit(message string, now time.Time) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shouldEmitLocked(message, now)
}

func (m *Manager) shouldEmitLocked(message string, now time.Time) bool {
	last, ok := m.lastEmitted[message]
	if !ok {
		return true
	}
	return now.Sub(last) >= m.cooldown
}

// Trigger emits an alert for the message unless it is inside its
// cooldown window. Returns the new alert and true on emission.
func (m *Manager) Trigger(message string, level status.Level, now time.Time) (Alert, bool) {
	m.mu.Lock()

	if !m.shouldEmitLocked(message, now) {
		m.mu.Unlock()
		return Alert{}, false
	}

	a := Alert{
		ID:        uuid.NewString(),
		Message:   message,
		Type:      level,
		Timestamp: now,
	}

	// Prepend: the log is most-recent-first
	m.alerts = append([]Alert{a}, m.alerts...)
	m.lastEmitted[message] = now
	onEmit := m.onEmit
	m.mu.Unlock()

	m.logger.Info("alert emitted",
		"id", a.ID,
		"type", a.Type,
		"message", a.Message,
	)

	if onEmit != nil {
		onEmit(a)
	}

	return a, true
}

// Dismiss removes a single alert by id. The message's cooldown window
// is untouched, so a dismissed alert keeps suppressing duplicates
// until its window lapses.
func (m *Manager) Dismiss(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.alerts {
		if a.ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			m.logger.Debug("alert dismissed", "id", id)
			return nil
		}
	}
	return ErrNotFound
}

// Alerts returns a copy of the log, most recent first.
func (m *Manager) Alerts() []Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Latest returns the most recent alert, if any.
func (m *Manager) Latest() (Alert, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.alerts) == 0 {
		return Alert{}, false
	}
	return m.alerts[0], true
}

// Len returns the number of alerts currently in the log.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.alerts)
}
