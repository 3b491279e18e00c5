package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
)

type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
	recipeService *service.RecipeService
	authService   *service.AuthService
}

func NewUserHandler(
	userService *service.UserService,
	followService *service.FollowService,
	recipeService *service.RecipeService,
	authService *service.AuthService,
) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
		recipeService: recipeService,
		authService:   authService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	optional := middleware.OptionalAuthMiddleware(h.authService)
	required := middleware.AuthMiddleware(h.authService)

	users := router.Group("/users")
	{
		users.POST("", h.Register)
		users.GET("", optional, h.List)
		users.GET("/me", required, h.Me)
		users.GET("/subscriptions", required, h.Subscriptions)
		users.GET("/:id", optional, h.Get)
		users.POST("/:id/subscribe", required, h.Subscribe)
		users.DELETE("/:id/subscribe", required, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewUserResponse(user, false))
}

func (h *UserHandler) List(c *gin.Context) {
	page, limit := pageParams(c)

	users, total, err := h.userService.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed := map[uuid.UUID]bool{}
	if viewer, ok := viewerID(c); ok {
		ids := make([]uuid.UUID, len(users))
		for i := range users {
			ids[i] = users[i].ID
		}
		subscribed, err = h.followService.IsSubscribed(c.Request.Context(), viewer, ids)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	results := make([]UserResponse, len(users))
	for i := range users {
		results[i] = NewUserResponse(&users[i], subscribed[users[i].ID])
	}

	c.JSON(http.StatusOK, newPaginatedResponse(c, total, page, limit, results))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	isSubscribed := false
	if viewer, ok := viewerID(c); ok {
		subscribed, err := h.followService.IsSubscribed(c.Request.Context(), viewer, []uuid.UUID{user.ID})
		if err != nil {
			respondError(c, err)
			return
		}
		isSubscribed = subscribed[user.ID]
	}

	c.JSON(http.StatusOK, NewUserResponse(user, isSubscribed))
}

func (h *UserHandler) Me(c *gin.Context) {
	viewer, _ := viewerID(c)

	user, err := h.userService.Get(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(user, false))
}

// Subscriptions lists the authors the viewer follows, each with a preview of
// their recipes capped by recipes_limit.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	viewer, _ := viewerID(c)
	page, limit := pageParams(c)
	recipesLimit := recipesLimitParam(c)

	authors, total, err := h.followService.Subscriptions(c.Request.Context(), viewer, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]FollowResponse, len(authors))
	for i := range authors {
		resp, err := h.buildFollowResponse(c, &authors[i], recipesLimit, true)
		if err != nil {
			respondError(c, err)
			return
		}
		results[i] = resp
	}

	c.JSON(http.StatusOK, newPaginatedResponse(c, total, page, limit, results))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	viewer, _ := viewerID(c)

	author, err := h.followService.Subscribe(c.Request.Context(), viewer, id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.buildFollowResponse(c, author, recipesLimitParam(c), true)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	viewer, _ := viewerID(c)

	if err := h.followService.Unsubscribe(c.Request.Context(), viewer, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) buildFollowResponse(c *gin.Context, author *models.User, recipesLimit int, isSubscribed bool) (FollowResponse, error) {
	recipes, count, err := h.recipeService.ByAuthor(c.Request.Context(), author.ID, recipesLimit)
	if err != nil {
		return FollowResponse{}, err
	}
	return NewFollowResponse(author, recipes, count, isSubscribed), nil
}

func recipesLimitParam(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
