package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/foodgram/backend/internal/models"
)

// RecipeService handles recipe CRUD and the favorite/cart toggles.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientAmount is one `{id, amount}` entry of a recipe write payload.
type IngredientAmount struct {
	ID     uuid.UUID
	Amount int
}

// RecipeInput carries a validated-but-unresolved recipe write. Image holds
// the stored reference, not the inline payload; the handler decodes and
// persists the upload before calling the service.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientAmount
}

// Viewer identifies the acting user for permission checks.
type Viewer struct {
	ID      uuid.UUID
	IsStaff bool
}

// RecipeFilter narrows List. Favorited and InCart only apply when ViewerID
// is set: anonymous callers get the unfiltered listing.
type RecipeFilter struct {
	TagSlugs  []string
	AuthorID  *uuid.UUID
	Favorited bool
	InCart    bool
	ViewerID  *uuid.UUID
	Page      int
	Limit     int
}

func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns a page of recipes, newest first, plus the total match count.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if len(filter.TagSlugs) > 0 {
		tagged := s.db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if filter.ViewerID != nil {
		if filter.Favorited {
			favorited := s.db.Table("favorites").
				Select("recipe_id").
				Where("user_id = ?", *filter.ViewerID)
			query = query.Where("recipes.id IN (?)", favorited)
		}
		if filter.InCart {
			inCart := s.db.Table("cart_items").
				Select("recipe_id").
				Where("user_id = ?", *filter.ViewerID)
			query = query.Where("recipes.id IN (?)", inCart)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.pub_date DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ByAuthor returns an author's recipes, newest first, capped to limit when
// limit > 0, plus the author's total recipe count.
func (s *RecipeService) ByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", authorID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// Create validates the payload and writes the recipe, its tag set and its
// ingredient rows as one transaction.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	var recipeID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, input.Ingredients); err != nil {
			return err
		}

		recipe := models.Recipe{
			AuthorID:    authorID,
			Name:        input.Name,
			Image:       input.Image,
			Text:        input.Text,
			CookingTime: input.CookingTime,
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(&tags); err != nil {
			return err
		}
		if err := createIngredientRows(tx, recipe.ID, input.Ingredients); err != nil {
			return err
		}

		recipeID = recipe.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipeID)
}

// Update replaces the recipe's fields and its whole tag and ingredient sets.
// The related collections are cleared and rebuilt, never diffed.
func (s *RecipeService) Update(ctx context.Context, viewer Viewer, id uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != viewer.ID && !viewer.IsStaff {
		return nil, ErrForbidden
	}
	if err := validateRecipeInput(input); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := resolveTags(tx, input.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredientsExist(tx, input.Ingredients); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         input.Name,
			"text":         input.Text,
			"cooking_time": input.CookingTime,
		}
		if input.Image != "" {
			updates["image"] = input.Image
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(recipe).Association("Tags").Replace(&tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return createIngredientRows(tx, id, input.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete removes the recipe; the database cascades its ingredient rows and
// favorite/cart associations.
func (s *RecipeService) Delete(ctx context.Context, viewer Viewer, id uuid.UUID) error {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != viewer.ID && !viewer.IsStaff {
		return ErrForbidden
	}
	return s.db.WithContext(ctx).Delete(&models.Recipe{}, "id = ?", id).Error
}

// Favorite adds the recipe to the user's favorites. A repeat add is an
// error, not a no-op, to surface client bugs.
func (s *RecipeService) Favorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("favorite", "recipe is already in favorites")
	}

	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if isUniqueViolation(err) {
			// A concurrent add lost the race on the unique index.
			return nil, validationErr("favorite", "recipe is already in favorites")
		}
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.Get(ctx, recipeID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return validationErr("favorite", "recipe is not in favorites")
	}
	return nil
}

// AddToCart and RemoveFromCart follow the same strict toggle contract.
func (s *RecipeService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, validationErr("shopping_cart", "recipe is already in the shopping cart")
	}

	item := models.CartItem{UserID: userID, RecipeID: recipeID}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, validationErr("shopping_cart", "recipe is already in the shopping cart")
		}
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	if _, err := s.Get(ctx, recipeID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return validationErr("shopping_cart", "recipe is not in the shopping cart")
	}
	return nil
}

// ViewerFlags reports which of the given recipes the viewer has favorited
// and carted, in two lookups instead of two per recipe.
func (s *RecipeService) ViewerFlags(ctx context.Context, viewerID uuid.UUID, recipeIDs []uuid.UUID) (map[uuid.UUID]bool, map[uuid.UUID]bool, error) {
	favorited := make(map[uuid.UUID]bool, len(recipeIDs))
	inCart := make(map[uuid.UUID]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	var favIDs []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Pluck("recipe_id", &favIDs).Error; err != nil {
		return nil, nil, err
	}
	for _, id := range favIDs {
		favorited[id] = true
	}

	var cartIDs []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, recipeIDs).
		Pluck("recipe_id", &cartIDs).Error; err != nil {
		return nil, nil, err
	}
	for _, id := range cartIDs {
		inCart[id] = true
	}

	return favorited, inCart, nil
}

func validateRecipeInput(input RecipeInput) error {
	if input.CookingTime < 1 {
		return validationErr("cooking_time", "cooking time must be at least 1")
	}
	if len(input.TagIDs) == 0 {
		return validationErr("tags", "at least one tag is required")
	}
	if len(input.Ingredients) == 0 {
		return validationErr("ingredients", "at least one ingredient is required")
	}

	seen := make(map[uuid.UUID]bool, len(input.Ingredients))
	for _, entry := range input.Ingredients {
		if entry.Amount < 1 {
			return validationErr("ingredients", "ingredient amount must be at least 1")
		}
		if seen[entry.ID] {
			return validationErr("ingredients", "ingredients must not repeat within a recipe")
		}
		seen[entry.ID] = true
	}
	return nil
}

// resolveTags loads the referenced tags. Repeated ids collapse to one; only
// a genuinely unknown id is an error.
func resolveTags(tx *gorm.DB, ids []uuid.UUID) ([]models.Tag, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", unique).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(unique) {
		return nil, ErrNotFound
	}
	return tags, nil
}

func checkIngredientsExist(tx *gorm.DB, entries []IngredientAmount) error {
	ids := make([]uuid.UUID, len(entries))
	for i, entry := range entries {
		ids[i] = entry.ID
	}

	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrNotFound
	}
	return nil
}

func createIngredientRows(tx *gorm.DB, recipeID uuid.UUID, entries []IngredientAmount) error {
	rows := make([]models.RecipeIngredient, len(entries))
	for i, entry := range entries {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: entry.ID,
			Amount:       entry.Amount,
		}
	}
	return tx.Create(&rows).Error
}
