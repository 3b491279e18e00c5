package testhelpers

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// CreateTestUser inserts a user whose email and username derive from name.
// The password for every fixture user is "password123".
func CreateTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", name),
		Username:     name,
		FirstName:    "Test",
		LastName:     name,
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user %q: %v", name, err)
	}
	return user
}

func CreateTestTag(t *testing.T, db *gorm.DB, name, color, slug string) *models.Tag {
	tag := &models.Tag{Name: name, Color: color, Slug: slug}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to create test tag %q: %v", name, err)
	}
	return tag
}

func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create test ingredient %q: %v", name, err)
	}
	return ingredient
}

// CreateTestRecipe inserts a recipe with the given tag and one ingredient
// line per (ingredient, amount) pair.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tag *models.Tag, lines map[*models.Ingredient]int) *models.Recipe {
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "/media/recipes/" + name + ".png",
		Text:        "Instructions for " + name,
		CookingTime: 10,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe %q: %v", name, err)
	}
	if tag != nil {
		if err := db.Model(recipe).Association("Tags").Append(tag); err != nil {
			t.Fatalf("failed to tag test recipe %q: %v", name, err)
		}
	}
	for ingredient, amount := range lines {
		row := &models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredient.ID,
			Amount:       amount,
		}
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("failed to add ingredient to test recipe %q: %v", name, err)
		}
	}
	return recipe
}
