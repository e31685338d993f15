package contacts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elarose/storefront/pkg/db/dbtest"
	"github.com/elarose/storefront/pkg/db/models"
	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/pagination"
)

func TestCreateNormalizesAndStores(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	dto, err := svc.Create(context.Background(), Input{
		Name:    "  Mira ",
		Email:   " Mira@Example.COM ",
		Message: " Do you ship to Lisbon? ",
	}, "203.0.113.9")
	require.NoError(t, err)
	assert.Equal(t, "Mira", dto.Name)
	assert.Equal(t, "mira@example.com", dto.Email)
	assert.Equal(t, "Do you ship to Lisbon?", dto.Message)

	list, err := svc.List(context.Background(), pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Contacts, 1)
	assert.Equal(t, dto.ID, list.Contacts[0].ID)
}

func TestCreateReportsFieldErrors(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Input{Name: " ", Email: "not-an-email", Message: ""}, "")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	fields, ok := typed.Details().(map[string]any)["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a valid email", fields["email"])
	assert.Equal(t, "is required", fields["message"])
}

func TestListPaginatesNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &models.Contact{
			Name:      "n",
			Email:     "a@b.co",
			Message:   "m",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	svc, err := NewService(repo, nil)
	require.NoError(t, err)

	first, err := svc.List(context.Background(), pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Contacts, 2)
	assert.True(t, first.Contacts[0].CreatedAt.After(first.Contacts[1].CreatedAt))
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(context.Background(), pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Contacts, 1)
	assert.Empty(t, second.NextCursor)
	assert.True(t, second.Contacts[0].CreatedAt.Equal(base))
}
