package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantrypal/backend/internal/service"
)

type IngredientHandler struct {
	recipes service.IRecipeService
}

func NewIngredientHandler(recipes service.IRecipeService) *IngredientHandler {
	return &IngredientHandler{recipes: recipes}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("/search", h.SearchIngredients)
	}
}

func (h *IngredientHandler) SearchIngredients(c *gin.Context) {
	page, err := h.recipes.SearchIngredients(
		c.Request.Context(),
		c.Query("query"),
		csvQuery(c, "category"),
		intQuery(c, "page"),
		intQuery(c, "pageSize"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
