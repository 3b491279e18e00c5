package api

import (
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/models"
)

// Request payloads.

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RecipeIngredientRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

// RecipeRequest is the write representation of a recipe. Image carries an
// inline base64 payload; it is required on create and optional on update.
type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Text        string                    `json:"text" binding:"required"`
	Image       string                    `json:"image"`
	CookingTime int                       `json:"cooking_time" binding:"required"`
	Tags        []uuid.UUID               `json:"tags"`
	Ingredients []RecipeIngredientRequest `json:"ingredients"`
}

type TagRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
	Slug  string `json:"slug" binding:"required"`
}

type IngredientRequest struct {
	Name            string `json:"name" binding:"required"`
	MeasurementUnit string `json:"measurement_unit" binding:"required"`
}

// Response payloads.

type LoginResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID                uuid.UUID                  `json:"id"`
	Tags              []models.Tag               `json:"tags"`
	Author            UserResponse               `json:"author"`
	Ingredients       []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited       bool                       `json:"is_favorited"`
	IsInShoppingCart  bool                       `json:"is_in_shopping_cart"`
	Name              string                     `json:"name"`
	Image             string                     `json:"image"`
	Text              string                     `json:"text"`
	CookingTime       int                        `json:"cooking_time"`
}

// ShortRecipeResponse is the condensed representation used when a recipe is
// referenced as a side effect of another action.
type ShortRecipeResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// FollowResponse is the followed author's profile plus a capped preview of
// their recipes.
type FollowResponse struct {
	ID           uuid.UUID             `json:"id"`
	Email        string                `json:"email"`
	Username     string                `json:"username"`
	FirstName    string                `json:"first_name"`
	LastName     string                `json:"last_name"`
	IsSubscribed bool                  `json:"is_subscribed"`
	Recipes      []ShortRecipeResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func NewUserResponse(u *models.User, isSubscribed bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

func NewShortRecipeResponse(r *models.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func NewRecipeResponse(r *models.Recipe, authorSubscribed, isFavorited, isInCart bool) RecipeResponse {
	ingredients := make([]RecipeIngredientResponse, len(r.Ingredients))
	for i, row := range r.Ingredients {
		ingredients[i] = RecipeIngredientResponse{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		}
	}

	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}

	return RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           NewUserResponse(&r.Author, authorSubscribed),
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
}

func NewFollowResponse(author *models.User, recipes []models.Recipe, total int64, isSubscribed bool) FollowResponse {
	preview := make([]ShortRecipeResponse, len(recipes))
	for i := range recipes {
		preview[i] = NewShortRecipeResponse(&recipes[i])
	}

	return FollowResponse{
		ID:           author.ID,
		Email:        author.Email,
		Username:     author.Username,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: isSubscribed,
		Recipes:      preview,
		RecipesCount: total,
	}
}
