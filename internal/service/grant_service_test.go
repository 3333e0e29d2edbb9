package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"draftshare/internal/domain"
	"draftshare/internal/repository"
)

type fakeContents struct {
	items map[uuid.UUID]*domain.Content
}

func (f *fakeContents) GetByID(_ context.Context, id uuid.UUID) (*domain.Content, error) {
	content, ok := f.items[id]
	if !ok {
		return nil, domain.ErrContentNotFound
	}
	return content, nil
}

func (f *fakeContents) GetPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Content, error) {
	content, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if content.Status != domain.StatusPublish {
		return nil, domain.ErrContentNotFound
	}
	return content, nil
}

func (f *fakeContents) ListDraftsByOwner(_ context.Context, ownerID string) ([]domain.ContentSummary, error) {
	return f.listByStatus(ownerID, domain.StatusDraft), nil
}

func (f *fakeContents) ListScheduledByOwner(_ context.Context, ownerID string) ([]domain.ContentSummary, error) {
	return f.listByStatus(ownerID, domain.StatusFuture), nil
}

func (f *fakeContents) listByStatus(ownerID string, status domain.ContentStatus) []domain.ContentSummary {
	var out []domain.ContentSummary
	for _, content := range f.items {
		if content.OwnerID == ownerID && content.Status == status {
			out = append(out, domain.ContentSummary{ID: content.ID, Title: content.Title})
		}
	}
	return out
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type testEnv struct {
	clock    *fakeClock
	contents *fakeContents
	store    *repository.GrantStore
	service  *GrantService
	resolver *AccessResolver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	contents := &fakeContents{items: map[uuid.UUID]*domain.Content{}}

	store := repository.NewGrantStore(repository.NewMemoryDocumentStore())
	store.Now = clock.Now

	svc := NewGrantService(store, contents)
	svc.now = clock.Now

	return &testEnv{
		clock:    clock,
		contents: contents,
		store:    store,
		service:  svc,
		resolver: NewAccessResolver(store, contents),
	}
}

func (e *testEnv) addContent(ownerID string, status domain.ContentStatus, title string) uuid.UUID {
	id := uuid.New()
	e.contents.items[id] = &domain.Content{
		ID:      id,
		OwnerID: ownerID,
		Title:   title,
		Status:  status,
	}
	return id
}

func TestCreateGrantForDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "wip post")

	grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "d"})
	require.NoError(t, err)
	require.Equal(t, draftID.String(), grant.ContentID)
	require.Equal(t, env.clock.Now().Unix()+86400, grant.ExpiresAt)
	require.True(t, strings.HasPrefix(grant.Token, "share"+draftID.String()+"_"))

	ok, err := env.resolver.CanView(ctx, draftID, grant.Token)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateGrantTokensUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "wip")

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "h"})
		require.NoError(t, err)
		require.False(t, seen[grant.Token])
		seen[grant.Token] = true
	}
}

func TestCreateGrantContentNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Create(context.Background(), "u1", uuid.New(), DurationSpec{})
	require.ErrorIs(t, err, domain.ErrContentNotFound)
}

func TestCreateGrantAlreadyPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	publishedID := env.addContent("u1", domain.StatusPublish, "live post")

	_, err := env.service.Create(ctx, "u1", publishedID, DurationSpec{Expires: 1, Measure: "d"})
	require.ErrorIs(t, err, domain.ErrContentPublished)

	grants, err := env.service.ListGrants(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, grants)
}

func TestCreateGrantForScheduledContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	futureID := env.addContent("u1", domain.StatusFuture, "scheduled post")

	grant, err := env.service.Create(ctx, "u1", futureID, DurationSpec{Expires: 2, Measure: "h"})
	require.NoError(t, err)

	ok, err := env.resolver.CanView(ctx, futureID, grant.Token)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestExtendAddsToExpiry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "wip")

	grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "d"})
	require.NoError(t, err)

	require.NoError(t, env.service.Extend(ctx, "u1", grant.Token, DurationSpec{Expires: 2, Measure: "h"}))

	grants, err := env.service.ListGrants(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, grant.ExpiresAt+7200, grants[0].ExpiresAt)
}

func TestExtendUnknownTokenIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "wip")

	grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "d"})
	require.NoError(t, err)

	require.NoError(t, env.service.Extend(ctx, "u1", "no-such-token", DurationSpec{Expires: 2, Measure: "h"}))

	grants, err := env.service.ListGrants(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, grant.ExpiresAt, grants[0].ExpiresAt)
}

func TestDeleteRemovesGrant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "wip")

	grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "d"})
	require.NoError(t, err)

	require.NoError(t, env.service.Delete(ctx, "u1", grant.Token))

	grants, err := env.service.ListGrants(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, grants)

	ok, err := env.resolver.CanView(ctx, draftID, grant.Token)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "u1 draft")

	grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "d"})
	require.NoError(t, err)

	// Чужой токен не даёт ни продлить, ни удалить
	require.NoError(t, env.service.Extend(ctx, "u2", grant.Token, DurationSpec{Expires: 2, Measure: "h"}))
	require.NoError(t, env.service.Delete(ctx, "u2", grant.Token))

	grants, err := env.service.ListGrants(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, grant.ExpiresAt, grants[0].ExpiresAt)
}

func TestCanViewGlobalAcrossOwners(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u2", domain.StatusDraft, "u2 draft")

	grant, err := env.service.Create(ctx, "u2", draftID, DurationSpec{Expires: 1, Measure: "d"})
	require.NoError(t, err)

	// Проверка по токену не привязана к сессии владельца
	ok, err := env.resolver.CanView(ctx, draftID, grant.Token)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGrantExpiresAfterDuration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "wip")

	grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "d"})
	require.NoError(t, err)

	ok, err := env.resolver.CanView(ctx, draftID, grant.Token)
	require.NoError(t, err)
	require.True(t, ok)

	env.clock.Advance(86401 * time.Second)

	ok, err = env.resolver.CanView(ctx, draftID, grant.Token)
	require.NoError(t, err)
	require.False(t, ok)

	grants, err := env.service.ListGrants(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, grants)
}

func TestListOwned(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addContent("u1", domain.StatusDraft, "draft one")
	env.addContent("u1", domain.StatusFuture, "scheduled one")
	env.addContent("u1", domain.StatusPublish, "published one")
	env.addContent("u2", domain.StatusDraft, "foreign draft")

	owned, err := env.service.ListOwned(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned.Drafts, 1)
	require.Equal(t, "draft one", owned.Drafts[0].Title)
	require.Len(t, owned.Scheduled, 1)
	require.Equal(t, "scheduled one", owned.Scheduled[0].Title)
}
