package timeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/alexanderramin/lineboard/internal/domain"
)

// Signature is a content hash of every ComputeLayout input. Two calls with
// equal signatures produce identical layouts. Inputs that cannot be encoded
// (a NaN geometry) have no signature.
func Signature(items []domain.ScheduledItem, lanes []domain.ResourceLane, w domain.TimeWindow, opts Options) (string, error) {
	data, err := json.Marshal(struct {
		Items []domain.ScheduledItem
		Lanes []domain.ResourceLane
		Zoom  domain.ZoomLevel
		Start string
		Days  int
		Opts  Options
	}{items, lanes, w.Zoom, w.Start.Format("2006-01-02T15:04:05Z07:00 MST"), w.Days, opts})
	if err != nil {
		return "", fmt.Errorf("layout signature: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Memo caches layouts by Signature. It only saves recomputation; a miss
// and a hit return the same layout.
type Memo struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]Layout
	order    []string
	hits     int
	misses   int
}

// NewMemo keeps at most capacity layouts, evicting the oldest first.
func NewMemo(capacity int) *Memo {
	return &Memo{
		capacity: max(capacity, 1),
		entries:  make(map[string]Layout),
	}
}

// Layout returns the cached layout for the inputs, computing it on a miss.
// Inputs without a signature are computed every time and never cached.
func (m *Memo) Layout(items []domain.ScheduledItem, lanes []domain.ResourceLane, w domain.TimeWindow, opts Options) Layout {
	key, err := Signature(items, lanes, w, opts)
	if err != nil {
		m.mu.Lock()
		m.misses++
		m.mu.Unlock()
		return ComputeLayout(items, lanes, w, opts)
	}

	m.mu.Lock()
	if l, ok := m.entries[key]; ok {
		m.hits++
		m.mu.Unlock()
		return l
	}
	m.misses++
	m.mu.Unlock()

	l := ComputeLayout(items, lanes, w, opts)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = l
		m.order = append(m.order, key)
		for len(m.order) > m.capacity {
			delete(m.entries, m.order[0])
			m.order = m.order[1:]
		}
	}
	return l
}

// Stats returns the hit and miss counters.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
