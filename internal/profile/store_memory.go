package profile

import (
	"context"
	"fmt"
	"sync"

	"chalak/pkg/requestcontext"
	"chalak/pkg/sentinel"
)

// MemoryStore keeps profiles in process. Used in tests and when no database
// is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

func (m *MemoryStore) Get(_ context.Context, userID string) (Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return Profile{}, fmt.Errorf("profile %s: %w", userID, sentinel.ErrNotFound)
	}
	return clone(p), nil
}

func (m *MemoryStore) UpsertPersonal(ctx context.Context, userID string, details PersonalDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.load(userID)
	p.Personal = details
	p.UpdatedAt = requestcontext.Now(ctx)
	m.profiles[userID] = p
	return nil
}

func (m *MemoryStore) UpsertAddress(ctx context.Context, userID string, details AddressDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.load(userID)
	p.Address = details
	p.UpdatedAt = requestcontext.Now(ctx)
	m.profiles[userID] = p
	return nil
}

func (m *MemoryStore) PutDocument(ctx context.Context, userID string, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.load(userID)
	p.Documents[doc.Kind] = doc
	p.UpdatedAt = requestcontext.Now(ctx)
	m.profiles[userID] = p
	return nil
}

// load returns the existing profile or a fresh one. Callers hold the lock.
func (m *MemoryStore) load(userID string) Profile {
	if p, ok := m.profiles[userID]; ok {
		return p
	}
	return Profile{UserID: userID, Documents: DocumentSet{}}
}

func clone(p Profile) Profile {
	docs := make(DocumentSet, len(p.Documents))
	for k, v := range p.Documents {
		docs[k] = v
	}
	p.Documents = docs
	return p
}

// MemoryBlobStore holds document bytes in process.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	return "mem://" + key, nil
}
