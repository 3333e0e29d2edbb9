package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"draftshare/internal/domain"
)

// Число повторов цикла load-merge-save при конфликте ревизий.
// Конфликты возможны только при конкурентной записи из другого процесса.
const maxSaveAttempts = 5

// GrantStore владеет каноническим набором доступов. Каждая операция
// загружает документ целиком, чистит просроченные доступы и записывает
// результат обратно одной записью. Мутации внутри процесса сериализуются
// мьютексом, между процессами — compare-and-swap по ревизии документа.
type GrantStore struct {
	docs DocumentStore
	mu   sync.Mutex

	Now func() time.Time
}

func NewGrantStore(docs DocumentStore) *GrantStore {
	return &GrantStore{
		docs: docs,
		Now:  time.Now,
	}
}

// Reap возвращает набор без доступов, срок которых истёк к моменту now.
// Владельцы с опустевшим списком остаются в наборе: в их записи могут
// находиться другие поля. Повторный вызов ничего не меняет.
func Reap(set domain.OwnerGrantSet, now int64) (domain.OwnerGrantSet, bool) {
	changed := false
	reaped := make(domain.OwnerGrantSet, len(set))

	for ownerID, settings := range set {
		if settings == nil {
			reaped[ownerID] = settings
			continue
		}

		live := settings.Shared[:0:0]
		for _, grant := range settings.Shared {
			if grant.Expired(now) {
				changed = true
				continue
			}
			live = append(live, grant)
		}

		cp := settings.Clone()
		cp.Shared = live
		reaped[ownerID] = cp
	}

	return reaped, changed
}

// Snapshot загружает документ и возвращает его без просроченных доступов.
// Если чистка что-то удалила, результат записывается обратно до возврата,
// поэтому вызывающий код никогда не видит просроченный доступ.
func (s *GrantStore) Snapshot(ctx context.Context) (domain.OwnerGrantSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		set, revision, err := s.docs.Load(ctx)
		if err != nil {
			return nil, err
		}

		reaped, changed := Reap(set, s.Now().Unix())
		if !changed {
			return reaped, nil
		}

		if err := s.docs.Save(ctx, reaped, revision); err != nil {
			if errors.Is(err, domain.ErrRevisionConflict) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return reaped, nil
	}

	return nil, fmt.Errorf("%w: reap not persisted: %v", domain.ErrStoreUnavailable, lastErr)
}

// Update выполняет транзакцию load-reap-modify-save над списком доступов
// одного владельца. fn получает текущий (уже очищенный) список и возвращает
// новый; остальные владельцы и прочие поля записи не затрагиваются.
func (s *GrantStore) Update(ctx context.Context, ownerID string, fn func(shared []domain.Grant) []domain.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		set, revision, err := s.docs.Load(ctx)
		if err != nil {
			return err
		}

		reaped, _ := Reap(set, s.Now().Unix())

		settings, ok := reaped[ownerID]
		if !ok || settings == nil {
			settings = &domain.OwnerSettings{}
			reaped[ownerID] = settings
		}
		settings.Shared = fn(settings.Shared)

		if err := s.docs.Save(ctx, reaped, revision); err != nil {
			if errors.Is(err, domain.ErrRevisionConflict) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}

	return fmt.Errorf("%w: update not persisted: %v", domain.ErrStoreUnavailable, lastErr)
}
