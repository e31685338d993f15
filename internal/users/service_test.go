package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elarose/storefront/pkg/db/dbtest"
	"github.com/elarose/storefront/pkg/enums"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/identity"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Hour)
	return c.t
}

func newTestService(t *testing.T) Service {
	t.Helper()
	c := &clock{t: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}
	svc, err := NewService(ServiceParams{Repo: NewRepository(dbtest.Open(t)), Now: c.now})
	require.NoError(t, err)
	return svc
}

func TestSyncUpsertsAndKeepsEditedFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	who := identity.Identity{UserID: "uid-1", Email: "Ana@Example.com", Role: enums.RoleCustomer}

	first, err := svc.Sync(ctx, who)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", first.Email)
	assert.False(t, first.IsAdmin)

	name := "  Ana Lima "
	updated, err := svc.Update(ctx, who, UpdateInput{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", updated.DisplayName)

	who.Role = enums.RoleAdmin
	again, err := svc.Sync(ctx, who)
	require.NoError(t, err)
	assert.True(t, again.IsAdmin)
	assert.Equal(t, "Ana Lima", again.DisplayName)
	assert.True(t, again.LastSeenAt.After(first.LastSeenAt))
}

func TestSyncRequiresIdentity(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Sync(context.Background(), identity.Identity{})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestListPagesByLastSeen(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.Sync(ctx, identity.Identity{UserID: id, Email: id + "@x.io", Role: enums.RoleCustomer})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "c", page.Items[0].ID)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	last, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "a", last.Items[0].ID)
}
