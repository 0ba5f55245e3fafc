package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pantrypal/backend/config"
	"github.com/pantrypal/backend/internal/model"
	"github.com/pantrypal/backend/internal/queue"
)

// RecipeService orchestrates the repository, cache, and search index. It is
// stateless and safe for concurrent use; all shared state lives in the
// backing stores.
//
// Mutation ordering within one call is strict: repository first, then the
// index notification, then the cache. A reader can therefore never observe a
// cache hit for data that was not persisted. Concurrent mutations of the
// same recipe are not serialized here; the last fully completed sequence
// determines cache state.
//
// Cache error policy: read-path cache failures are logged and treated as
// misses; write-path cache failures inside create/update/delete propagate,
// because a stale entry after a mutation is a consistency risk.
type RecipeService struct {
	repo      IRecipeRepository
	cache     IRecipeCache
	searcher  IRecipeSearcher
	publisher queue.Publisher
	logger    zerolog.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(repo IRecipeRepository, cache IRecipeCache, searcher IRecipeSearcher, publisher queue.Publisher, logger zerolog.Logger) *RecipeService {
	return &RecipeService{
		repo:      repo,
		cache:     cache,
		searcher:  searcher,
		publisher: publisher,
		logger:    logger,
	}
}

// observe logs the operation duration, warning when it exceeds the soft
// latency budget. The budget is an observability threshold, not a deadline.
func (s *RecipeService) observe(op string, start time.Time) {
	elapsed := time.Since(start)
	evt := s.logger.Debug()
	if elapsed > config.SlowOperationThreshold {
		evt = s.logger.Warn()
	}
	evt.Str("op", op).Dur("duration", elapsed).Msg("recipe operation completed")
}

// CreateRecipe validates and persists a recipe, notifies the indexer, and
// caches the result. Each step runs only if the previous one succeeded; a
// queue or cache failure after persistence still fails the call so the
// caller can retry or reconcile.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	defer s.observe("create_recipe", time.Now())

	if err := validateNewRecipe(recipe); err != nil {
		return nil, err
	}

	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	normalizeNewRecipe(recipe)
	recipe.RecomputeAverageRating()

	if err := s.repo.Create(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe %s: %w", recipe.ID, err)
	}

	if err := s.publisher.Publish(ctx, queue.IndexCreate{Recipe: recipe}); err != nil {
		return nil, fmt.Errorf("%w: index-create for recipe %s: %v", ErrQueue, recipe.ID, err)
	}

	if err := s.cache.SetRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("cache recipe %s after create: %w", recipe.ID, err)
	}

	s.invalidateMatchResults(ctx, recipe.ID)

	return recipe, nil
}

// GetRecipeByID reads cache-aside: a repository hit populates the cache
// before returning. Absent in both stores returns (nil, nil).
func (s *RecipeService) GetRecipeByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	defer s.observe("get_recipe", time.Now())

	cached, err := s.cache.GetRecipe(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("recipe_id", id.String()).Msg("cache read failed, falling through to repository")
	} else if cached != nil {
		return cached, nil
	}

	recipe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get recipe %s: %w", id, err)
	}
	if recipe == nil {
		return nil, nil
	}

	// Populating on the read path is best-effort.
	if err := s.cache.SetRecipe(ctx, recipe); err != nil {
		s.logger.Warn().Err(err).Str("recipe_id", id.String()).Msg("failed to populate cache")
	}

	return recipe, nil
}

// UpdateRecipe applies a partial update, notifies the indexer, and
// overwrites the cache entry with the merged result. The entry is never
// deleted on update, which avoids a cache-stampede window between the delete
// and the next read.
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, updates *model.Recipe) (*model.Recipe, error) {
	defer s.observe("update_recipe", time.Now())

	if err := validateRecipePatch(updates); err != nil {
		return nil, err
	}

	if len(updates.Ratings) > 0 {
		updates.RecomputeAverageRating()
	}

	updated, err := s.repo.UpdateByID(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("update recipe %s: %w", id, err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, id)
	}

	if err := s.publisher.Publish(ctx, queue.IndexUpdate{Recipe: updated}); err != nil {
		return nil, fmt.Errorf("%w: index-update for recipe %s: %v", ErrQueue, id, err)
	}

	if err := s.cache.SetRecipe(ctx, updated); err != nil {
		return nil, fmt.Errorf("cache recipe %s after update: %w", id, err)
	}

	s.invalidateMatchResults(ctx, id)

	return updated, nil
}

// DeleteRecipe removes a recipe from the repository, notifies the indexer,
// and evicts the cache entry. A recipe absent from the repository never
// outlives the call in cache.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) error {
	defer s.observe("delete_recipe", time.Now())

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("%w: recipe %s", ErrNotFound, id)
	}

	if err := s.publisher.Publish(ctx, queue.IndexDelete{RecipeID: id}); err != nil {
		return fmt.Errorf("%w: index-delete for recipe %s: %v", ErrQueue, id, err)
	}

	if err := s.cache.Delete(ctx, RecipeCacheKey(id)); err != nil {
		return fmt.Errorf("evict recipe %s after delete: %w", id, err)
	}

	s.invalidateMatchResults(ctx, id)

	return nil
}

// invalidateMatchResults clears cached ingredient-match results, which may
// all be stale after any recipe mutation.
func (s *RecipeService) invalidateMatchResults(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Clear(ctx, ingredientsKeyPrefix+"*"); err != nil {
		s.logger.Warn().Err(err).Str("recipe_id", id.String()).Msg("failed to clear match-result cache")
	}
}

// FindRecipesByIngredients returns recipes requiring at least one of the
// supplied ingredient ids. The cache key is order-independent; an empty id
// list yields an empty result, and unknown ids simply contribute no matches.
func (s *RecipeService) FindRecipesByIngredients(ctx context.Context, ingredientIDs []string) ([]*model.Recipe, error) {
	defer s.observe("find_by_ingredients", time.Now())

	if len(ingredientIDs) == 0 {
		return []*model.Recipe{}, nil
	}

	key := MatchCacheKey(ingredientIDs)

	var cached []*model.Recipe
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, falling through to repository")
	} else if found {
		return cached, nil
	}

	recipes, err := s.repo.FindByIngredients(ctx, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("match recipes by ingredients: %w", err)
	}
	if recipes == nil {
		recipes = []*model.Recipe{}
	}

	if err := s.cache.Set(ctx, key, recipes, config.MatchCacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache match result")
	}

	s.publisher.PublishAsync(ctx, queue.MatchAnalytics{
		IngredientIDs: ingredientIDs,
		ResultCount:   len(recipes),
		Timestamp:     time.Now().UTC(),
	})

	return recipes, nil
}

// SearchRecipes serves full-text search through a short-lived cache in front
// of the search index. Aggregate results go stale faster than single
// entities, hence the shorter TTL.
func (s *RecipeService) SearchRecipes(ctx context.Context, query string, ingredientNames []string, filters SearchFilters, page, pageSize int) (*RecipePage, error) {
	defer s.observe("search_recipes", time.Now())

	page, pageSize = normalizePage(page, pageSize)
	key := SearchCacheKey(query, ingredientNames, filters, page, pageSize)

	var cached RecipePage
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, falling through to search index")
	} else if found {
		return &cached, nil
	}

	result, err := s.searcher.SearchRecipes(ctx, query, ingredientNames, filters, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}

	if err := s.cache.Set(ctx, key, result, config.SearchCacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache search result")
	}

	filterJSON, _ := json.Marshal(filters)
	s.publisher.PublishAsync(ctx, queue.SearchAnalytics{
		Query:       query,
		Filters:     string(filterJSON),
		ResultCount: result.Total,
		Timestamp:   time.Now().UTC(),
	})

	return result, nil
}

// SearchIngredients delegates to the search index; catalog queries are cheap
// enough to skip the cache.
func (s *RecipeService) SearchIngredients(ctx context.Context, query string, categories []string, page, pageSize int) (*IngredientPage, error) {
	defer s.observe("search_ingredients", time.Now())

	result, err := s.searcher.SearchIngredients(ctx, query, categories, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("search ingredients: %w", err)
	}
	return result, nil
}

// FindSimilarRecipes delegates a more-like-this lookup to the search index.
func (s *RecipeService) FindSimilarRecipes(ctx context.Context, id uuid.UUID, limit int) ([]*model.Recipe, error) {
	defer s.observe("find_similar", time.Now())

	recipes, err := s.searcher.FindSimilarRecipes(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("find similar recipes for %s: %w", id, err)
	}
	return recipes, nil
}

// normalizeNewRecipe replaces nil collections with empty ones so the struct
// matches what the JSONB columns persist. Steps are optional on create; a
// nil list must not read as missing downstream.
func normalizeNewRecipe(recipe *model.Recipe) {
	if recipe.Steps == nil {
		recipe.Steps = model.JSONBSteps{}
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = model.JSONBIngredients{}
	}
	if recipe.Tags == nil {
		recipe.Tags = model.JSONBStringArray{}
	}
	if recipe.Ratings == nil {
		recipe.Ratings = model.JSONBRatings{}
	}
}

// validateNewRecipe checks the required-field invariants for creation.
func validateNewRecipe(recipe *model.Recipe) error {
	if recipe == nil {
		return fmt.Errorf("%w: recipe is required", ErrValidation)
	}
	if recipe.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(recipe.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrValidation)
	}
	return validateRecipePatch(recipe)
}

// validateRecipePatch checks the invariants that apply to any supplied
// fields, full or partial.
func validateRecipePatch(recipe *model.Recipe) error {
	if recipe == nil {
		return fmt.Errorf("%w: update is required", ErrValidation)
	}
	if recipe.PrepTime < 0 {
		return fmt.Errorf("%w: prep time must be non-negative", ErrValidation)
	}
	if recipe.CookTime < 0 {
		return fmt.Errorf("%w: cook time must be non-negative", ErrValidation)
	}
	for _, req := range recipe.Ingredients {
		if req.IngredientID == "" {
			return fmt.Errorf("%w: ingredient id is required", ErrValidation)
		}
		if req.Quantity <= 0 {
			return fmt.Errorf("%w: ingredient %s quantity must be positive", ErrValidation, req.IngredientID)
		}
	}
	switch recipe.Difficulty {
	case "", model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrValidation, recipe.Difficulty)
	}
	return nil
}
