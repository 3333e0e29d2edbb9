package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"draftshare/internal/domain"
	"draftshare/internal/repository"
)

// ContentProvider — контракт хранилища записей, от которого зависит
// логика доступов.
type ContentProvider interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Content, error)
	GetPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Content, error)
	ListDraftsByOwner(ctx context.Context, ownerID string) ([]domain.ContentSummary, error)
	ListScheduledByOwner(ctx context.Context, ownerID string) ([]domain.ContentSummary, error)
}

type GrantService struct {
	grants   *repository.GrantStore
	contents ContentProvider

	now func() time.Time
}

func NewGrantService(grants *repository.GrantStore, contents ContentProvider) *GrantService {
	return &GrantService{
		grants:   grants,
		contents: contents,
		now:      time.Now,
	}
}

func generateToken(contentID uuid.UUID) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// Префикс с id записи упрощает отладку, секретность даёт случайная часть
	return fmt.Sprintf("share%s_%s", contentID, base64.RawURLEncoding.EncodeToString(b)), nil
}

// Create выдаёт новый доступ к неопубликованной записи владельца.
func (s *GrantService) Create(ctx context.Context, ownerID string, contentID uuid.UUID, spec DurationSpec) (*domain.Grant, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content.Status == domain.StatusPublish {
		return nil, domain.ErrContentPublished
	}

	token, err := generateToken(contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	grant := domain.Grant{
		ContentID: contentID.String(),
		ExpiresAt: s.now().Unix() + ToSeconds(spec),
		Token:     token,
	}

	err = s.grants.Update(ctx, ownerID, func(shared []domain.Grant) []domain.Grant {
		return append(shared, grant)
	})
	if err != nil {
		return nil, err
	}

	return &grant, nil
}

// Extend прибавляет срок к собственному доступу владельца. Неизвестный
// токен — не ошибка: операция ничего не меняет, но документ записывается
// заново, как и при любой другой мутации.
func (s *GrantService) Extend(ctx context.Context, ownerID string, token string, spec DurationSpec) error {
	seconds := ToSeconds(spec)

	return s.grants.Update(ctx, ownerID, func(shared []domain.Grant) []domain.Grant {
		for i := range shared {
			if shared[i].Token == token {
				shared[i].ExpiresAt += seconds
			}
		}
		return shared
	})
}

// Delete отзывает доступ владельца. Неизвестный токен — no-op.
func (s *GrantService) Delete(ctx context.Context, ownerID string, token string) error {
	return s.grants.Update(ctx, ownerID, func(shared []domain.Grant) []domain.Grant {
		kept := shared[:0:0]
		for _, grant := range shared {
			if grant.Token == token {
				continue
			}
			kept = append(kept, grant)
		}
		return kept
	})
}

// ListGrants возвращает действующие доступы владельца в порядке выдачи.
func (s *GrantService) ListGrants(ctx context.Context, ownerID string) ([]domain.Grant, error) {
	set, err := s.grants.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return set.Grants(ownerID), nil
}

// ListOwned возвращает записи владельца, которыми можно поделиться:
// черновики и отложенные публикации.
func (s *GrantService) ListOwned(ctx context.Context, ownerID string) (*domain.OwnedContent, error) {
	drafts, err := s.contents.ListDraftsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	scheduled, err := s.contents.ListScheduledByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled content: %w", err)
	}

	return &domain.OwnedContent{Drafts: drafts, Scheduled: scheduled}, nil
}
