package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/models"
)

// ErrEmptyCart is returned when a shopping-list export is requested with
// nothing in the cart. The caller gets an error, never an empty file.
var ErrEmptyCart = errors.New("shopping cart is empty")

// ShoppingListRow is one aggregated line of the export: the summed amount of
// an ingredient across every recipe in the cart.
type ShoppingListRow struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// ShoppingList aggregates the user's cart: ingredient rows joined through
// the cart, grouped by (name, unit), amounts summed, ordered by name.
func (s *RecipeService) ShoppingList(ctx context.Context, userID uuid.UUID) ([]ShoppingListRow, error) {
	var rows []ShoppingListRow
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN cart_items ON cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCart
	}
	return rows, nil
}

// RenderShoppingList formats the aggregated rows as the plain-text document
// served as a download.
func RenderShoppingList(user *models.User, rows []ShoppingListRow, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Shopping list for: %s\n\n", user.FullName())
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format("2006-01-02"))

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = fmt.Sprintf("- %s (%s) - %d", row.Name, row.MeasurementUnit, row.Amount)
	}
	b.WriteString(strings.Join(lines, "\n"))

	fmt.Fprintf(&b, "\n\nFoodgram (%d)", now.Year())

	return b.String()
}

// ShoppingListFilename derives the attachment name from the viewer.
func ShoppingListFilename(username string) string {
	return fmt.Sprintf("%s_shopping_list.txt", username)
}
