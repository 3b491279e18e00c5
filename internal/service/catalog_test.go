package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestTags(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	testhelpers.CreateTestTag(t, db, "Breakfast", "#E26C2D", "breakfast")
	dinner := testhelpers.CreateTestTag(t, db, "Dinner", "#49B64E", "dinner")

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	got, err := svc.GetTag(ctx, dinner.ID)
	require.NoError(t, err)
	assert.Equal(t, "dinner", got.Slug)

	_, err = svc.GetTag(ctx, uuid.New())
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestCreateTagDuplicate(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	require.NoError(t, svc.CreateTag(ctx, &models.Tag{Name: "Lunch", Color: "#8775D2", Slug: "lunch"}))

	err := svc.CreateTag(ctx, &models.Tag{Name: "Lunch", Color: "#000000", Slug: "lunch2"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestIngredients(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	testhelpers.CreateTestIngredient(t, db, "Flour", "g")
	testhelpers.CreateTestIngredient(t, db, "Flaxseed", "g")
	testhelpers.CreateTestIngredient(t, db, "Salt", "g")

	all, err := svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// Prefix search is case-insensitive.
	matched, err := svc.ListIngredients(ctx, "fl")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "Flaxseed", matched[0].Name)
	assert.Equal(t, "Flour", matched[1].Name)

	none, err := svc.ListIngredients(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetIngredient(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	svc := service.NewCatalogService(db)
	ctx := context.Background()

	salt := testhelpers.CreateTestIngredient(t, db, "Salt", "g")

	got, err := svc.GetIngredient(ctx, salt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Salt", got.Name)

	_, err = svc.GetIngredient(ctx, uuid.New())
	assert.True(t, errors.Is(err, service.ErrNotFound))
}
