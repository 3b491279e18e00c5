package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/service"
)

// SetupRouter wires services, handlers and routes. redisClient and
// imageStore may come in degraded (nil redis disables rate limiting).
func SetupRouter(db *gorm.DB, jwtSecret string, redisClient *redis.Client, imageStore service.ImageStore) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS())

	router.GET("/health", api.HealthCheck)

	authService := service.NewAuthService(db, jwtSecret)
	userService := service.NewUserService(db)
	followService := service.NewFollowService(db)
	recipeService := service.NewRecipeService(db)
	catalogService := service.NewCatalogService(db)

	var recipeLimiter *middleware.RateLimiter
	if redisClient != nil {
		recipeLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	authHandler := api.NewAuthHandler(authService)
	userHandler := api.NewUserHandler(userService, followService, recipeService, authService)
	recipeHandler := api.NewRecipeHandler(recipeService, followService, userService, authService, imageStore, recipeLimiter)
	catalogHandler := api.NewCatalogHandler(catalogService, authService)

	v1 := router.Group("/api")
	authHandler.RegisterRoutes(v1)
	userHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)
	catalogHandler.RegisterRoutes(v1)

	return router
}
