package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/testhelpers"
)

func TestUserUniqueConstraints(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	testhelpers.CreateTestUser(t, db, "vasya")

	dup := &models.User{
		Email:        "vasya@example.com",
		Username:     "someoneelse",
		FirstName:    "V",
		LastName:     "P",
		PasswordHash: "x",
	}
	assert.Error(t, db.Create(dup).Error)

	dup = &models.User{
		Email:        "other@example.com",
		Username:     "vasya",
		FirstName:    "V",
		LastName:     "P",
		PasswordHash: "x",
	}
	assert.Error(t, db.Create(dup).Error)
}

func TestFavoriteUniquePerUserRecipe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateTestUser(t, db, "author")
	fan := testhelpers.CreateTestUser(t, db, "fan")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "pancakes", nil, nil)

	require.NoError(t, db.Create(&models.Favorite{UserID: fan.ID, RecipeID: recipe.ID}).Error)
	assert.Error(t, db.Create(&models.Favorite{UserID: fan.ID, RecipeID: recipe.ID}).Error)

	// Another user may favorite the same recipe.
	other := testhelpers.CreateTestUser(t, db, "other")
	assert.NoError(t, db.Create(&models.Favorite{UserID: other.ID, RecipeID: recipe.ID}).Error)
}

func TestFollowUniquePerPair(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	follower := testhelpers.CreateTestUser(t, db, "follower")
	author := testhelpers.CreateTestUser(t, db, "author")

	require.NoError(t, db.Create(&models.Follow{UserID: follower.ID, AuthorID: author.ID}).Error)
	assert.Error(t, db.Create(&models.Follow{UserID: follower.ID, AuthorID: author.ID}).Error)
}

func TestRecipeIngredientUniquePerRecipe(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateTestUser(t, db, "author")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "pancakes", nil, nil)
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")

	require.NoError(t, db.Create(&models.RecipeIngredient{
		RecipeID: recipe.ID, IngredientID: flour.ID, Amount: 100,
	}).Error)
	assert.Error(t, db.Create(&models.RecipeIngredient{
		RecipeID: recipe.ID, IngredientID: flour.ID, Amount: 200,
	}).Error)
}

func TestDeletingUserCascades(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	author := testhelpers.CreateTestUser(t, db, "author")
	fan := testhelpers.CreateTestUser(t, db, "fan")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "pancakes", nil, map[*models.Ingredient]int{flour: 100})

	require.NoError(t, db.Create(&models.Favorite{UserID: fan.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: fan.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, db.Create(&models.Follow{UserID: fan.ID, AuthorID: author.ID}).Error)

	require.NoError(t, db.Delete(author).Error)

	var count int64
	db.Model(&models.Recipe{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.RecipeIngredient{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Favorite{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.CartItem{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Follow{}).Count(&count)
	assert.Equal(t, int64(0), count)

	// The ingredient catalog survives recipe deletion.
	db.Model(&models.Ingredient{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
