package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pantrypal/backend/internal/model"
)

// IRecipeRepository defines the document-store operations the recipe service
// consumes. Absence is reported as nil results, not errors.
type IRecipeRepository interface {
	Create(ctx context.Context, recipe *model.Recipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	UpdateByID(ctx context.Context, id uuid.UUID, updates *model.Recipe) (*model.Recipe, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (bool, error)
	FindByIngredients(ctx context.Context, ingredientIDs []string) ([]*model.Recipe, error)
}

// IRecipeCache defines the cache operations the recipe service consumes.
type IRecipeCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context, pattern string) error
	GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	SetRecipe(ctx context.Context, recipe *model.Recipe) error
}

// IRecipeSearcher defines the search-index operations the recipe service and
// API consume.
type IRecipeSearcher interface {
	SearchRecipes(ctx context.Context, query string, ingredientNames []string, filters SearchFilters, page, pageSize int) (*RecipePage, error)
	SearchIngredients(ctx context.Context, query string, categories []string, page, pageSize int) (*IngredientPage, error)
	FindSimilarRecipes(ctx context.Context, recipeID uuid.UUID, limit int) ([]*model.Recipe, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
	GetRecipeByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error)
	UpdateRecipe(ctx context.Context, id uuid.UUID, updates *model.Recipe) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id uuid.UUID) error
	FindRecipesByIngredients(ctx context.Context, ingredientIDs []string) ([]*model.Recipe, error)
	SearchRecipes(ctx context.Context, query string, ingredientNames []string, filters SearchFilters, page, pageSize int) (*RecipePage, error)
	SearchIngredients(ctx context.Context, query string, categories []string, page, pageSize int) (*IngredientPage, error)
	FindSimilarRecipes(ctx context.Context, id uuid.UUID, limit int) ([]*model.Recipe, error)
}

// ITokenService defines the opaque token issuer/verifier the API consumes.
type ITokenService interface {
	GenerateToken(userID uuid.UUID, username string) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
}
