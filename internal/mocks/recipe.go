package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pantrypal/backend/internal/model"
	"github.com/pantrypal/backend/internal/queue"
	"github.com/pantrypal/backend/internal/service"
)

// MockRecipeRepository is a mock implementation of the recipe repository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) UpdateByID(ctx context.Context, id uuid.UUID, updates *model.Recipe) (*model.Recipe, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeRepository) FindByIngredients(ctx context.Context, ingredientIDs []string) ([]*model.Recipe, error) {
	args := m.Called(ctx, ingredientIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

// MockRecipeCache is a mock implementation of the recipe cache
type MockRecipeCache struct {
	mock.Mock
}

func (m *MockRecipeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecipeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockRecipeCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockRecipeCache) Clear(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func (m *MockRecipeCache) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeCache) SetRecipe(ctx context.Context, recipe *model.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

// MockRecipeSearcher is a mock implementation of the search index adapter
type MockRecipeSearcher struct {
	mock.Mock
}

func (m *MockRecipeSearcher) SearchRecipes(ctx context.Context, query string, ingredientNames []string, filters service.SearchFilters, page, pageSize int) (*service.RecipePage, error) {
	args := m.Called(ctx, query, ingredientNames, filters, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipePage), args.Error(1)
}

func (m *MockRecipeSearcher) SearchIngredients(ctx context.Context, query string, categories []string, page, pageSize int) (*service.IngredientPage, error) {
	args := m.Called(ctx, query, categories, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngredientPage), args.Error(1)
}

func (m *MockRecipeSearcher) FindSimilarRecipes(ctx context.Context, recipeID uuid.UUID, limit int) ([]*model.Recipe, error) {
	args := m.Called(ctx, recipeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

// MockPublisher is a mock implementation of the queue publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event queue.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) PublishAsync(ctx context.Context, event queue.Event) {
	m.Called(ctx, event)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	args := m.Called(ctx, recipe)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetRecipeByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, updates *model.Recipe) (*model.Recipe, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecipeService) FindRecipesByIngredients(ctx context.Context, ingredientIDs []string) ([]*model.Recipe, error) {
	args := m.Called(ctx, ingredientIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}

func (m *MockRecipeService) SearchRecipes(ctx context.Context, query string, ingredientNames []string, filters service.SearchFilters, page, pageSize int) (*service.RecipePage, error) {
	args := m.Called(ctx, query, ingredientNames, filters, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecipePage), args.Error(1)
}

func (m *MockRecipeService) SearchIngredients(ctx context.Context, query string, categories []string, page, pageSize int) (*service.IngredientPage, error) {
	args := m.Called(ctx, query, categories, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngredientPage), args.Error(1)
}

func (m *MockRecipeService) FindSimilarRecipes(ctx context.Context, id uuid.UUID, limit int) ([]*model.Recipe, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipe), args.Error(1)
}
