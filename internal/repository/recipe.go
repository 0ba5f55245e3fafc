package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pantrypal/backend/internal/model"
)

// RecipeRepository is the authoritative recipe store. Absence is reported as
// nil results, not errors; the orchestration layer decides whether absence
// is a failure.
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new RecipeRepository instance
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create persists a new recipe, assigning an id when the caller did not.
func (r *RecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// FindByID retrieves a recipe by id, returning (nil, nil) when absent.
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	err := r.db.WithContext(ctx).First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find recipe %s: %w", id, err)
	}
	return &recipe, nil
}

// UpdateByID applies the non-zero fields of updates to an existing recipe and
// returns the merged result, or (nil, nil) when the id does not exist.
func (r *RecipeRepository) UpdateByID(ctx context.Context, id uuid.UUID, updates *model.Recipe) (*model.Recipe, error) {
	res := r.db.WithContext(ctx).Model(&model.Recipe{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update recipe %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// DeleteByID removes a recipe, reporting whether it existed.
func (r *RecipeRepository) DeleteByID(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Recipe{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete recipe %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// FindByIngredients returns recipes requiring at least one of the supplied
// ingredient ids. Ordering of the raw result is not specified.
func (r *RecipeRepository) FindByIngredients(ctx context.Context, ingredientIDs []string) ([]*model.Recipe, error) {
	if len(ingredientIDs) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx)

	if r.db.Dialector.Name() == "postgres" {
		cond := r.db.Where("ingredients @> ?", containmentDoc(ingredientIDs[0]))
		for _, id := range ingredientIDs[1:] {
			cond = cond.Or("ingredients @> ?", containmentDoc(id))
		}
		query = query.Where(cond)
	} else {
		// Fallback for non-Postgres databases (test runs on sqlite)
		cond := r.db.Where("ingredients LIKE ?", likeDoc(ingredientIDs[0]))
		for _, id := range ingredientIDs[1:] {
			cond = cond.Or("ingredients LIKE ?", likeDoc(id))
		}
		query = query.Where(cond)
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to match recipes by ingredients: %w", err)
	}

	result := make([]*model.Recipe, len(recipes))
	for i := range recipes {
		result[i] = &recipes[i]
	}
	return result, nil
}

func containmentDoc(ingredientID string) string {
	return fmt.Sprintf(`[{"ingredient_id":%q}]`, ingredientID)
}

func likeDoc(ingredientID string) string {
	return fmt.Sprintf(`%%"ingredient_id":%q%%`, ingredientID)
}
