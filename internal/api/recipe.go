package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pantrypal/backend/internal/middleware"
	"github.com/pantrypal/backend/internal/model"
	"github.com/pantrypal/backend/internal/service"
)

type RecipeHandler struct {
	recipes      service.IRecipeService
	images       *service.ImageService
	tokenService service.ITokenService
}

func NewRecipeHandler(recipes service.IRecipeService, images *service.ImageService, tokenService service.ITokenService) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		images:       images,
		tokenService: tokenService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("/search", h.SearchRecipes)
		recipes.POST("/match", h.MatchRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.GET("/:id/similar", h.SimilarRecipes)
		recipes.POST("", middleware.AuthMiddleware(h.tokenService), h.CreateRecipe)
		recipes.PUT("/:id", middleware.AuthMiddleware(h.tokenService), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.tokenService), h.DeleteRecipe)
		recipes.POST("/:id/image", middleware.AuthMiddleware(h.tokenService), h.UploadRecipeImage)
	}
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}

	if userID, exists := c.Get("user_id"); exists {
		recipe.AuthorID = userID.(uuid.UUID)
	}

	created, err := h.recipes.CreateRecipe(c.Request.Context(), &recipe)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id", "code": "validation_error"})
		return
	}

	recipe, err := h.recipes.GetRecipeByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	// Absence is not an error: a null payload with success status.
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id", "code": "validation_error"})
		return
	}

	var updates model.Recipe
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}

	updated, err := h.recipes.UpdateRecipe(c.Request.Context(), id, &updates)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id", "code": "validation_error"})
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"id":      id.String(),
	})
}

// matchRequest accepts both field spellings; mobile clients send camelCase.
type matchRequest struct {
	IngredientIDs      []string `json:"ingredient_ids"`
	IngredientIDsCamel []string `json:"ingredientIds"`
}

func (r matchRequest) ids() []string {
	if len(r.IngredientIDs) > 0 {
		return r.IngredientIDs
	}
	return r.IngredientIDsCamel
}

func (h *RecipeHandler) MatchRecipes(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_error"})
		return
	}

	recipes, err := h.recipes.FindRecipesByIngredients(c.Request.Context(), req.ids())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) SearchRecipes(c *gin.Context) {
	filters := service.SearchFilters{
		Difficulty:  c.Query("difficulty"),
		Cuisine:     c.Query("cuisine"),
		MaxPrepTime: intQuery(c, "maxPrepTime"),
		MaxCookTime: intQuery(c, "maxCookTime"),
		Tags:        csvQuery(c, "tags"),
	}

	page, err := h.recipes.SearchRecipes(
		c.Request.Context(),
		c.Query("query"),
		csvQuery(c, "ingredients"),
		filters,
		intQuery(c, "page"),
		intQuery(c, "pageSize"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) SimilarRecipes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id", "code": "validation_error"})
		return
	}

	recipes, err := h.recipes.FindSimilarRecipes(c.Request.Context(), id, intQuery(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) UploadRecipeImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id", "code": "validation_error"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required", "code": "validation_error"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image", "code": "validation_error"})
		return
	}

	url, err := h.images.UploadRecipeImage(c.Request.Context(), id, data, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}

	// Persist the URL through the service so the cache and index stay fresh.
	updated, err := h.recipes.UpdateRecipe(c.Request.Context(), id, &model.Recipe{ImageURL: url})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func intQuery(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}

func csvQuery(c *gin.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
