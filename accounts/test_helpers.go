package accounts

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestStore is an in-memory Store, used only in tests.
type TestStore struct {
	mu   sync.Mutex
	docs map[primitive.ObjectID]Account

	// DropReads makes Account report not found, to exercise the
	// insert-then-read-back inconsistency path.
	DropReads bool

	// WriteCount counts mutating store calls.
	WriteCount int
}

func NewTestStore() *TestStore {
	return &TestStore{docs: make(map[primitive.ObjectID]Account)}
}

// SetupTestService wires a Service to a fresh in-memory store.
func SetupTestService() (Service, *TestStore) {
	store := NewTestStore()
	return NewService(store), store
}

func (s *TestStore) Account(ctx context.Context, id primitive.ObjectID) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DropReads {
		return Account{}, ErrAccountNotFound
	}

	a, ok := s.docs[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}

	return a, nil
}

func (s *TestStore) InsertAccount(ctx context.Context, a *Account) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.WriteCount++

	id := primitive.NewObjectID()
	doc := *a
	doc.ID = id
	s.docs[id] = doc

	return id, nil
}

func (s *TestStore) ReplaceAccount(ctx context.Context, id primitive.ObjectID, p Payload, updatedAt time.Time) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.WriteCount++

	a, ok := s.docs[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}

	a.Name = p.Name
	a.Scope = p.Scope
	a.UpdatedAt = updatedAt
	s.docs[id] = a

	return a, nil
}

func (s *TestStore) CountByScope(ctx context.Context) (map[Scope]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[Scope]int64)
	for _, a := range s.docs {
		counts[a.Scope]++
	}

	return counts, nil
}

// SeedAccount inserts a document directly, bypassing service rules.
func (s *TestStore) SeedAccount(a Account) primitive.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.docs[a.ID] = a

	return a.ID
}
