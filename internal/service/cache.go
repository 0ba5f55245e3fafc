package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pantrypal/backend/config"
	"github.com/pantrypal/backend/internal/model"
)

// Cache key conventions. These are shared with other components reading the
// same store and must not change shape.
const (
	recipeKeyPrefix      = "recipe:"
	ingredientsKeyPrefix = "ingredients:"
	searchKeyPrefix      = "search:"
)

// RecipeCacheKey returns the cache key for a single recipe.
func RecipeCacheKey(id uuid.UUID) string {
	return recipeKeyPrefix + id.String()
}

// MatchCacheKey returns the cache key for an ingredient-match result. The ids
// are sorted first so that permutations of the same set share one entry.
func MatchCacheKey(ingredientIDs []string) string {
	sorted := make([]string, len(ingredientIDs))
	copy(sorted, ingredientIDs)
	sort.Strings(sorted)
	return ingredientsKeyPrefix + strings.Join(sorted, ",")
}

// searchKeyParams is everything that distinguishes one search result page
// from another; it is serialized into the cache key.
type searchKeyParams struct {
	SearchFilters
	Ingredients []string `json:"ingredients,omitempty"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}

// SearchCacheKey returns the cache key for a search result page.
func SearchCacheKey(query string, ingredients []string, filters SearchFilters, page, pageSize int) string {
	serialized, _ := json.Marshal(searchKeyParams{
		SearchFilters: filters,
		Ingredients:   ingredients,
		Page:          page,
		PageSize:      pageSize,
	})
	return searchKeyPrefix + query + ":" + string(serialized)
}

// CacheService is a TTL-based key/value cache over Redis, the shared
// read-through point for hot entities.
type CacheService struct {
	client     *redis.Client
	defaultTTL time.Duration
	logger     zerolog.Logger
}

// NewCacheService creates a new CacheService instance
func NewCacheService(client *redis.Client, logger zerolog.Logger) *CacheService {
	return &CacheService{
		client:     client,
		defaultTTL: config.RecipeCacheTTL,
		logger:     logger,
	}
}

// Set serializes value and writes it with the given TTL. A zero ttl uses the
// service default.
func (c *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: failed to serialize %s: %v", ErrCacheWrite, key, err)
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrCacheWrite, key, err)
	}
	return nil
}

// Get deserializes the stored value into dest and reports whether the key was
// present. A miss is not an error.
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to read %s: %v", ErrCacheRead, key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("%w: failed to deserialize %s: %v", ErrCacheRead, key, err)
	}
	return true, nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (c *CacheService) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", ErrCacheWrite, key, err)
	}
	return nil
}

// Clear deletes all keys matching a glob-style pattern. Zero matches is not
// an error. Uses SCAN rather than KEYS to avoid blocking the store.
func (c *CacheService) Clear(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("%w: failed to clear %s: %v", ErrCacheWrite, pattern, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: failed to scan %s: %v", ErrCacheRead, pattern, err)
	}

	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("%w: failed to clear %s: %v", ErrCacheWrite, pattern, err)
		}
	}
	return nil
}

// GetRecipe is a typed read of a cached recipe, returning (nil, nil) on miss.
// A structurally invalid cached value surfaces as a cache read error rather
// than a miss, so corruption is visible instead of masked by a refetch.
func (c *CacheService) GetRecipe(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	found, err := c.Get(ctx, RecipeCacheKey(id), &recipe)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	if err := validateCachedRecipe(&recipe); err != nil {
		return nil, fmt.Errorf("%w: invalid cached recipe %s: %v", ErrCacheRead, id, err)
	}
	return &recipe, nil
}

// SetRecipe validates and caches a recipe under the default recipe TTL.
func (c *CacheService) SetRecipe(ctx context.Context, recipe *model.Recipe) error {
	if err := validateCachedRecipe(recipe); err != nil {
		return fmt.Errorf("%w: refusing to cache invalid recipe: %v", ErrCacheWrite, err)
	}
	return c.Set(ctx, RecipeCacheKey(recipe.ID), recipe, config.RecipeCacheTTL)
}

func validateCachedRecipe(recipe *model.Recipe) error {
	if recipe == nil {
		return errors.New("recipe is nil")
	}
	if recipe.ID == uuid.Nil {
		return errors.New("recipe id is empty")
	}
	if recipe.Name == "" {
		return errors.New("recipe name is empty")
	}
	if recipe.Ingredients == nil {
		return errors.New("recipe ingredient list is missing")
	}
	if recipe.Steps == nil {
		return errors.New("recipe step list is missing")
	}
	return nil
}
