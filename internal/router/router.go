package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pantrypal/backend/internal/api"
	"github.com/pantrypal/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	recipeHandler *api.RecipeHandler,
	ingredientHandler *api.IngredientHandler,
	logger zerolog.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization", "Accept", "Origin", "X-Request-ID"},
	}))

	v1 := router.Group("/api/v1")
	recipeHandler.RegisterRoutes(v1)
	ingredientHandler.RegisterRoutes(v1)

	return router
}
