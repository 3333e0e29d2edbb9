package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"draftshare/internal/domain"
)

// AccessResolver решает, показывать ли неопубликованную запись анонимному
// посетителю по предъявленному токену. Решение принимается на месте по
// паре (запись, токен), без состояния между запросами.
type AccessResolver struct {
	grants   GrantSnapshotter
	contents ContentProvider
}

// GrantSnapshotter отдаёт очищенный от просроченных доступов набор.
type GrantSnapshotter interface {
	Snapshot(ctx context.Context) (domain.OwnerGrantSet, error)
}

func NewAccessResolver(grants GrantSnapshotter, contents ContentProvider) *AccessResolver {
	return &AccessResolver{grants: grants, contents: contents}
}

// CanView проверяет токен по доступам всех владельцев: посетитель анонимен,
// и чей именно это доступ, заранее неизвестно.
func (r *AccessResolver) CanView(ctx context.Context, contentID uuid.UUID, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	set, err := r.grants.Snapshot(ctx)
	if err != nil {
		return false, err
	}

	_, ok := set.FindGrant(contentID.String(), token)
	return ok, nil
}

// ResolveViewable подставляет неопубликованную запись, когда обычный
// публичный запрос ничего не нашёл: запись должна существовать, не быть
// опубликованной и иметь действующий доступ по токену. Иначе nil.
func (r *AccessResolver) ResolveViewable(ctx context.Context, contentID uuid.UUID, token string) (*domain.Content, error) {
	ok, err := r.CanView(ctx, contentID, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	content, err := r.contents.GetByID(ctx, contentID)
	if err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if content.Status == domain.StatusPublish {
		// Опубликованную запись отдаёт обычный путь, подмена не нужна
		return nil, nil
	}

	return content, nil
}
