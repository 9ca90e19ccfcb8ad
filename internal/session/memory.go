package session

import (
	"context"
	"sync"
	"time"

	"github.com/datara/scholarhub/internal/domain"
)

type entry struct {
	data    []byte
	expires time.Time
}

// MemoryStore is a single-process Store used when no redis is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore starts a store that sweeps expired keys every cleanupFreq.
// A zero cleanupFreq disables the sweeper; expired keys still miss on Get.
func NewMemoryStore(cleanupFreq time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupFreq > 0 {
		go s.cleanup(cleanupFreq)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string, dst interface{}) error {
	if key == "" {
		return domain.ErrInvalidInput
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expires) {
		return domain.ErrNotFound
	}
	return decode(e.data, dst)
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if key == "" || ttl <= 0 {
		return domain.ErrInvalidInput
	}

	data, err := encode(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[key] = entry{data: data, expires: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Close stops the cleanup routine.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *MemoryStore) cleanup(freq time.Duration) {
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
}
