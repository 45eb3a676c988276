package session

import (
	"context"
	"sync"
	"time"

	"Ubermelon/internal/cart"
)

type memEntry struct {
	mu      sync.Mutex
	cart    cart.Cart
	flashes []string

	// guarded by MemStore.mu
	expires time.Time
}

// MemStore keeps sessions in process memory. The map is guarded by mu and
// each entry by its own mutex, so different sessions never contend on a
// read-modify-write.
type MemStore struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	m   map[string]*memEntry
}

func NewMemStore(ttl time.Duration) *MemStore {
	return &MemStore{
		ttl: ttl,
		now: time.Now,
		m:   make(map[string]*memEntry),
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Cart(ctx context.Context, sessionID string) (cart.Cart, error) {
	e := s.acquire(sessionID, false)
	if e == nil {
		return cart.New(), nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart, nil
}

func (s *MemStore) AddItem(ctx context.Context, sessionID, melonID string) (int, error) {
	e := s.acquire(sessionID, true)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cart = e.cart.Add(melonID)
	return e.cart.Quantity(melonID), nil
}

func (s *MemStore) Reset(ctx context.Context, sessionID string) error {
	e := s.acquire(sessionID, false)
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cart = e.cart.Clear()
	return nil
}

func (s *MemStore) AddFlash(ctx context.Context, sessionID, msg string) error {
	e := s.acquire(sessionID, true)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.flashes = append(e.flashes, msg)
	return nil
}

func (s *MemStore) PopFlashes(ctx context.Context, sessionID string) ([]string, error) {
	e := s.acquire(sessionID, false)
	if e == nil {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.flashes
	e.flashes = nil
	return out, nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.m {
		if now.After(e.expires) {
			delete(s.m, id)
			n++
		}
	}
	return n
}

func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// acquire returns the live entry for sessionID and extends its lifetime.
// An expired entry is treated as absent.
func (s *MemStore) acquire(sessionID string, create bool) *memEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	e, ok := s.m[sessionID]
	if ok && now.After(e.expires) {
		delete(s.m, sessionID)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		e = &memEntry{}
		s.m[sessionID] = e
	}

	e.expires = now.Add(s.ttl)
	return e
}
