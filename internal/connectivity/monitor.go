package connectivity

import "sync"

// Monitor holds the externally delivered online/offline signal. Repositories
// consult it on every student mutation and the sync queue drains only while
// it reports online. Transitions fan out to subscribers so a reconnect can
// schedule a drain.
type Monitor struct {
	mu     sync.RWMutex
	online bool
	subs   []func(online bool)
}

// NewMonitor builds a monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online}
}

// Online reports the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SetOnline updates the state. Subscribers are notified only on transitions.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, sub := range subs {
		sub(online)
	}
}

// Subscribe registers a callback invoked on every state transition.
func (m *Monitor) Subscribe(fn func(online bool)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}
