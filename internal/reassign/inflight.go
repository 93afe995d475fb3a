package reassign

import "sync"

// InFlight tracks items with an outstanding move request. One registry can
// be shared by several controllers so that concurrent sessions in the same
// process never double-submit an item.
type InFlight struct {
	mu    sync.Mutex
	items map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{items: make(map[string]struct{})}
}

// Acquire marks id as in flight. It returns false if it already was.
func (f *InFlight) Acquire(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; ok {
		return false
	}
	f.items[id] = struct{}{}
	return true
}

func (f *InFlight) Release(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
}

func (f *InFlight) Has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.items[id]
	return ok
}
