package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
	followService *service.FollowService
	userService   *service.UserService
	authService   *service.AuthService
	imageStore    service.ImageStore
	rateLimiter   *middleware.RateLimiter
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	followService *service.FollowService,
	userService *service.UserService,
	authService *service.AuthService,
	imageStore service.ImageStore,
	rateLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		followService: followService,
		userService:   userService,
		authService:   authService,
		imageStore:    imageStore,
		rateLimiter:   rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuthMiddleware(h.authService)
	required := middleware.AuthMiddleware(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.List)
		recipes.GET("/download_shopping_cart", required, h.DownloadShoppingCart)
		recipes.GET("/:id", optional, h.Get)

		create := []gin.HandlerFunc{required}
		if h.rateLimiter != nil {
			create = append(create, h.rateLimiter.RateLimitMiddleware())
		}
		recipes.POST("", append(create, h.Create)...)

		recipes.PATCH("/:id", required, h.Update)
		recipes.DELETE("/:id", required, h.Delete)
		recipes.POST("/:id/favorite", required, h.Favorite)
		recipes.DELETE("/:id/favorite", required, h.Unfavorite)
		recipes.POST("/:id/shopping_cart", required, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", required, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	filter := service.RecipeFilter{
		TagSlugs:  c.QueryArray("tags"),
		Favorited: boolQuery(c, "is_favorited"),
		InCart:    boolQuery(c, "is_in_shopping_cart"),
		Page:      page,
		Limit:     limit,
	}

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			respondError(c, service.ErrNotFound)
			return
		}
		filter.AuthorID = &authorID
	}
	if viewer, ok := viewerID(c); ok {
		filter.ViewerID = &viewer
	}

	recipes, total, err := h.recipeService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.buildRecipeResponses(c, recipes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(c, total, page, limit, results))
}

func (h *RecipeHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.buildRecipeResponses(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses[0])
}

func (h *RecipeHandler) Create(c *gin.Context) {
	viewer, _ := viewerID(c)

	input, err := h.bindRecipeRequest(c, true)
	if err != nil {
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), viewer, *input)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.buildRecipeResponses(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, responses[0])
}

func (h *RecipeHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	input, err := h.bindRecipeRequest(c, false)
	if err != nil {
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), currentViewer(c), id, *input)
	if err != nil {
		respondError(c, err)
		return
	}

	responses, err := h.buildRecipeResponses(c, []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses[0])
}

func (h *RecipeHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), currentViewer(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	h.addAssociation(c, h.recipeService.Favorite)
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	h.removeAssociation(c, h.recipeService.Unfavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addAssociation(c, h.recipeService.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeAssociation(c, h.recipeService.RemoveFromCart)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	viewer, _ := viewerID(c)

	user, err := h.userService.Get(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	rows, err := h.recipeService.ShoppingList(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	document := service.RenderShoppingList(user, rows, time.Now())
	filename := service.ShoppingListFilename(user.Username)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(document))
}

func (h *RecipeHandler) addAssociation(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	viewer, _ := viewerID(c)

	recipe, err := add(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewShortRecipeResponse(recipe))
}

func (h *RecipeHandler) removeAssociation(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	viewer, _ := viewerID(c)

	if err := remove(c.Request.Context(), viewer, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bindRecipeRequest validates the wire payload and stores the inline image.
// On error it has already written the response.
func (h *RecipeHandler) bindRecipeRequest(c *gin.Context, imageRequired bool) (*service.RecipeInput, error) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, err
	}

	if imageRequired && req.Image == "" {
		err := fmt.Errorf("image is required")
		c.JSON(http.StatusBadRequest, gin.H{"image": "this field is required"})
		return nil, err
	}

	input := service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
	}
	for _, entry := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, service.IngredientAmount{
			ID:     entry.ID,
			Amount: entry.Amount,
		})
	}

	if req.Image != "" {
		data, ext, err := service.DecodeBase64Image(req.Image)
		if err != nil {
			respondError(c, err)
			return nil, err
		}
		stored, err := h.imageStore.Save(c.Request.Context(), data, ext)
		if err != nil {
			respondError(c, err)
			return nil, err
		}
		input.Image = stored
	}

	return &input, nil
}

// buildRecipeResponses assembles the read representation: per-viewer flags
// for the recipes and their authors, resolved in batch.
func (h *RecipeHandler) buildRecipeResponses(c *gin.Context, recipes []models.Recipe) ([]RecipeResponse, error) {
	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, len(recipes))
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		authorIDs[i] = recipes[i].AuthorID
	}

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	subscribed := map[uuid.UUID]bool{}

	if viewer, ok := viewerID(c); ok {
		var err error
		favorited, inCart, err = h.recipeService.ViewerFlags(c.Request.Context(), viewer, recipeIDs)
		if err != nil {
			return nil, err
		}
		subscribed, err = h.followService.IsSubscribed(c.Request.Context(), viewer, authorIDs)
		if err != nil {
			return nil, err
		}
	}

	responses := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		responses[i] = NewRecipeResponse(r, subscribed[r.AuthorID], favorited[r.ID], inCart[r.ID])
	}
	return responses, nil
}

func boolQuery(c *gin.Context, key string) bool {
	v := c.Query(key)
	return v == "1" || v == "true"
}
