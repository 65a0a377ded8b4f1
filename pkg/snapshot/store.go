package snapshot

import (
	"context"
	"sort"
	"sync"

	"github.com/vango-dev/morph/internal/errors"
)

// ErrNotFound is matched by errors.Is for every missing snapshot.
var ErrNotFound = errors.New("S001")

// Store is the interface for snapshot backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores data under id, replacing any previous snapshot.
	Put(ctx context.Context, id string, data []byte) error

	// Get returns the snapshot stored under id, or an error matching
	// ErrNotFound.
	Get(ctx context.Context, id string) ([]byte, error)

	// Delete removes the snapshot. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the stored ids in sorted order.
	List(ctx context.Context) ([]string, error)
}

func notFound(id string) error {
	return errors.New("S001").WithDetailf("id %q", id)
}

func backendError(op string, err error) error {
	return errors.New("S002").WithDetail(op).Wrap(err)
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, id string, data []byte) error {
	s.mu.Lock()
	s.data[id] = append([]byte(nil), data...)
	s.mu.Unlock()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[id]
	if !ok {
		return nil, notFound(id)
	}
	return append([]byte(nil), data...), nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}
