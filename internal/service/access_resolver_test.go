package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"draftshare/internal/domain"
)

func TestResolveViewableSubstitutesDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "hidden draft")

	grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "h"})
	require.NoError(t, err)

	content, err := env.resolver.ResolveViewable(ctx, draftID, grant.Token)
	require.NoError(t, err)
	require.NotNil(t, content)
	require.Equal(t, draftID, content.ID)
}

func TestResolveViewableWrongToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "hidden draft")

	_, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "h"})
	require.NoError(t, err)

	content, err := env.resolver.ResolveViewable(ctx, draftID, "wrong-token")
	require.NoError(t, err)
	require.Nil(t, content)
}

func TestResolveViewablePublishedContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "about to publish")

	grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "d"})
	require.NoError(t, err)

	// Запись опубликовали после выдачи доступа: подмена больше не нужна
	env.contents.items[draftID].Status = domain.StatusPublish

	content, err := env.resolver.ResolveViewable(ctx, draftID, grant.Token)
	require.NoError(t, err)
	require.Nil(t, content)
}

func TestResolveViewableMissingContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	draftID := env.addContent("u1", domain.StatusDraft, "short lived")

	grant, err := env.service.Create(ctx, "u1", draftID, DurationSpec{Expires: 1, Measure: "h"})
	require.NoError(t, err)

	// Запись удалили, доступ остался
	delete(env.contents.items, draftID)

	content, err := env.resolver.ResolveViewable(ctx, draftID, grant.Token)
	require.NoError(t, err)
	require.Nil(t, content)
}
