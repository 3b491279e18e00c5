package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
)

func writeFixture(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSeedIngredientsIsIdempotent(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	path := writeFixture(t, "ingredients.json", `[
		{"name": "salt", "measurement_unit": "g"},
		{"name": "milk", "measurement_unit": "ml"}
	]`)

	require.NoError(t, seedIngredients(db, path))
	require.NoError(t, seedIngredients(db, path))

	var count int64
	db.Model(&models.Ingredient{}).Where("name = ?", "salt").Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&models.Ingredient{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSeedIngredientsKeepsDistinctUnits(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	testhelpers.CreateTestIngredient(t, db, "flour", "g")

	path := writeFixture(t, "ingredients.json", `[
		{"name": "flour", "measurement_unit": "g"},
		{"name": "flour", "measurement_unit": "kg"}
	]`)
	require.NoError(t, seedIngredients(db, path))

	// The (name, unit) pair already present is skipped, the new unit is not.
	var count int64
	db.Model(&models.Ingredient{}).Where("name = ?", "flour").Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSeedTagsIsIdempotent(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	path := writeFixture(t, "tags.json", `[
		{"name": "Breakfast", "color": "#E26C2D", "slug": "breakfast"}
	]`)

	require.NoError(t, seedTags(db, path))
	require.NoError(t, seedTags(db, path))

	var count int64
	db.Model(&models.Tag{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSeedTagsMissingFileIsSkipped(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	assert.NoError(t, seedTags(db, filepath.Join(t.TempDir(), "absent.json")))
}
