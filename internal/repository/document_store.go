package repository

import (
	"context"
	"encoding/json"
	"sync"

	"draftshare/internal/domain"
)

// DocumentStore хранит весь набор доступов одним документом.
// Реализации могут быть in-memory (тесты, локальная разработка),
// Postgres или Redis.
//
// Save выполняет compare-and-swap по ревизии: если документ был изменён
// после Load, возвращается domain.ErrRevisionConflict.
type DocumentStore interface {
	Load(ctx context.Context) (domain.OwnerGrantSet, int64, error)
	Save(ctx context.Context, set domain.OwnerGrantSet, revision int64) error
}

type MemoryDocumentStore struct {
	mu       sync.Mutex
	doc      []byte
	revision int64
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{}
}

func (s *MemoryDocumentStore) Load(_ context.Context) (domain.OwnerGrantSet, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return domain.OwnerGrantSet{}, s.revision, nil
	}

	var set domain.OwnerGrantSet
	if err := json.Unmarshal(s.doc, &set); err != nil {
		// Повреждённый документ равнозначен пустому
		return domain.OwnerGrantSet{}, s.revision, nil
	}
	if set == nil {
		set = domain.OwnerGrantSet{}
	}
	return set, s.revision, nil
}

func (s *MemoryDocumentStore) Save(_ context.Context, set domain.OwnerGrantSet, revision int64) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if revision != s.revision {
		return domain.ErrRevisionConflict
	}
	s.doc = raw
	s.revision++
	return nil
}
