package database

import (
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
)

// RunMigrations brings the schema up to date. Order matters: referenced
// tables first so the foreign keys can be created.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Follow{},
		&models.Favorite{},
		&models.CartItem{},
	)
}
