package emulator

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore holds the emulated collections and accounts. Everything
// lives in memory; the emulator exists so the client stack can run
// without the hosted service, not to persist anything.
type memoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]interface{}
	accounts    map[string]account
}

type account struct {
	uid      string
	password string
}

type storedDocument struct {
	ID     string
	Fields map[string]interface{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		collections: make(map[string]map[string]map[string]interface{}),
		accounts:    make(map[string]account),
	}
}

func (s *memoryStore) addDocument(collection string, fields map[string]interface{}) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]interface{})
		s.collections[collection] = docs
	}

	id := uuid.NewString()
	docs[id] = cloneFields(fields)
	return id
}

func (s *memoryStore) listDocuments(collection string) []storedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	out := make([]storedDocument, 0, len(docs))
	for id, fields := range docs {
		out = append(out, storedDocument{ID: id, Fields: cloneFields(fields)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return createdAt(out[i].Fields).After(createdAt(out[j].Fields))
	})
	return out
}

func (s *memoryStore) patchDocument(collection, id string, fields map[string]interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return false
	}
	for k, v := range fields {
		doc[k] = v
	}
	return true
}

func (s *memoryStore) removeDocument(collection, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return false
	}
	delete(s.collections[collection], id)
	return true
}

func (s *memoryStore) createAccount(email, password string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[email]; exists {
		return "", false
	}
	uid := uuid.NewString()
	s.accounts[email] = account{uid: uid, password: password}
	return uid, true
}

func (s *memoryStore) verifyAccount(email, password string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[email]
	if !ok || acc.password != password {
		return "", false
	}
	return acc.uid, true
}

func cloneFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func createdAt(fields map[string]interface{}) time.Time {
	if raw, ok := fields["createdAt"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
