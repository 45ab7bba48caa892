package render

import (
	"sync"

	"nitro-core-dx/internal/savestate"
)

// cacheKey identifies a baseline save state by the kind of checkpoint
// it is and the room/context id it was captured for.
type cacheKey struct {
	Type    savestate.StateType
	Context int
}

type cachedState struct {
	Dump []byte
	Meta []byte
}

// StateManager caches baseline save states so repeated renders of
// objects belonging to the same room don't have to replay the boot and
// navigation sequence every time.
type StateManager struct {
	mu    sync.RWMutex
	cache map[cacheKey]cachedState
}

// NewStateManager returns an empty state cache.
func NewStateManager() *StateManager {
	return &StateManager{cache: make(map[cacheKey]cachedState)}
}

// Put stores a save state under the given type/context key, replacing
// whatever was cached there before.
func (m *StateManager) Put(kind savestate.StateType, context int, dump, meta []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[cacheKey{kind, context}] = cachedState{Dump: dump, Meta: meta}
}

// Get returns the cached dump/meta pair for a key, and whether it was
// present.
func (m *StateManager) Get(kind savestate.StateType, context int) (dump, meta []byte, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, found := m.cache[cacheKey{kind, context}]
	if !found {
		return nil, nil, false
	}
	return s.Dump, s.Meta, true
}

// Has reports whether a state is cached for the given key.
func (m *StateManager) Has(kind savestate.StateType, context int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.cache[cacheKey{kind, context}]
	return ok
}

// Metadata decodes and returns the metadata sidecar for a cached state,
// without touching the (possibly large) dump itself.
func (m *StateManager) Metadata(kind savestate.StateType, context int) (savestate.Metadata, bool) {
	m.mu.RLock()
	s, found := m.cache[cacheKey{kind, context}]
	m.mu.RUnlock()
	if !found {
		return savestate.Metadata{}, false
	}
	meta, err := savestate.DecodeMetadata(s.Meta)
	if err != nil {
		return savestate.Metadata{}, false
	}
	return meta, true
}

// Evict removes a cached state, forcing the next render for that key to
// regenerate it.
func (m *StateManager) Evict(kind savestate.StateType, context int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, cacheKey{kind, context})
}
