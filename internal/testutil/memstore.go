package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/internal/gateway"
)

// AddCall records one Add invocation for spy-style assertions.
type AddCall struct {
	Collection string
	Fields     map[string]interface{}
	Token      string
}

// MemStore is an honest in-memory gateway.Store used by tests in place
// of the remote document store.
type MemStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]interface{}
	nextID      int

	// DenyTokenWrites makes Add reject any write carrying an auth
	// token with a permission error, leaving tokenless writes alone.
	DenyTokenWrites bool
	// FailAll makes every operation fail with a generic error.
	FailAll bool

	AddCalls []AddCall
}

func NewMemStore() *MemStore {
	return &MemStore{
		collections: make(map[string]map[string]map[string]interface{}),
	}
}

func (s *MemStore) Add(ctx context.Context, collection string, fields map[string]interface{}, authToken string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.AddCalls = append(s.AddCalls, AddCall{
		Collection: collection,
		Fields:     cloneFields(fields),
		Token:      authToken,
	})

	if s.FailAll {
		return "", fmt.Errorf("store unavailable")
	}
	if s.DenyTokenWrites && authToken != "" {
		return "", domain.WrapError(domain.ErrCodeForbidden, "akses ditolak", fmt.Errorf("permission denied"))
	}

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]interface{})
		s.collections[collection] = docs
	}

	s.nextID++
	id := fmt.Sprintf("doc-%d", s.nextID)
	docs[id] = cloneFields(fields)
	return id, nil
}

func (s *MemStore) Query(ctx context.Context, collection string, authToken string) ([]gateway.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAll {
		return nil, fmt.Errorf("store unavailable")
	}

	// Intentionally unordered; ordering is the gateway's job.
	var out []gateway.Document
	for id, fields := range s.collections[collection] {
		out = append(out, gateway.Document{ID: id, Fields: cloneFields(fields)})
	}
	return out, nil
}

func (s *MemStore) Patch(ctx context.Context, collection, id string, fields map[string]interface{}, authToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAll {
		return fmt.Errorf("store unavailable")
	}
	doc, ok := s.collections[collection][id]
	if !ok {
		return domain.WrapError(domain.ErrCodeNotFound, "dokumen tidak ditemukan", fmt.Errorf("no document %s", id))
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (s *MemStore) Remove(ctx context.Context, collection, id string, authToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAll {
		return fmt.Errorf("store unavailable")
	}
	if _, ok := s.collections[collection][id]; !ok {
		return domain.WrapError(domain.ErrCodeNotFound, "dokumen tidak ditemukan", fmt.Errorf("no document %s", id))
	}
	delete(s.collections[collection], id)
	return nil
}

// Get returns the stored fields of one document, for assertions.
func (s *MemStore) Get(collection, id string) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, false
	}
	return cloneFields(fields), true
}

func cloneFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// StaticSessions is a gateway.SessionSource returning a fixed identity.
type StaticSessions struct {
	Ident *domain.Identity
}

func (s StaticSessions) EnsureIdentity(ctx context.Context) *domain.Identity {
	return s.Ident
}

// Clock is an advanceable test clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
