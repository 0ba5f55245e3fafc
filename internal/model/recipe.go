package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Difficulty levels accepted on a recipe.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// RecipeStep is a single ordered instruction within a recipe.
type RecipeStep struct {
	Number      int    `json:"number"`
	Instruction string `json:"instruction"`
	Duration    int    `json:"duration,omitempty"` // seconds
	ImageURL    string `json:"image_url,omitempty"`
}

// IngredientRequirement references a catalog ingredient with the quantity a
// recipe needs. Distinct from the catalog Ingredient entity.
type IngredientRequirement struct {
	IngredientID  string  `json:"ingredient_id"`
	Name          string  `json:"name,omitempty"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	Note          string  `json:"note,omitempty"`
	Substitutable bool    `json:"substitutable,omitempty"`
}

// Rating is a single user rating of a recipe.
type Rating struct {
	UserID uuid.UUID `json:"user_id"`
	Value  float64   `json:"value"`
}

// Nutrition is a per-serving nutritional summary.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// JSONBSteps stores the ordered step list as a JSONB column.
type JSONBSteps []RecipeStep

func (s JSONBSteps) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *JSONBSteps) Scan(value interface{}) error {
	return scanJSONB(value, s)
}

// JSONBIngredients stores the ingredient requirement list as a JSONB column.
type JSONBIngredients []IngredientRequirement

func (i JSONBIngredients) Value() (driver.Value, error) {
	if len(i) == 0 {
		return "[]", nil
	}
	return json.Marshal(i)
}

func (i *JSONBIngredients) Scan(value interface{}) error {
	return scanJSONB(value, i)
}

// JSONBRatings stores the rating list as a JSONB column.
type JSONBRatings []Rating

func (r JSONBRatings) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "[]", nil
	}
	return json.Marshal(r)
}

func (r *JSONBRatings) Scan(value interface{}) error {
	return scanJSONB(value, r)
}

// JSONBStringArray is a custom type for handling string arrays in JSONB.
type JSONBStringArray []string

func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

func (a *JSONBStringArray) Scan(value interface{}) error {
	return scanJSONB(value, a)
}

func scanJSONB(value, dest interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, dest)
}

type Recipe struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
	Name          string           `gorm:"size:255;not null" json:"name"`
	Description   string           `gorm:"type:text" json:"description"`
	AuthorID      uuid.UUID        `gorm:"type:uuid" json:"author_id"`
	Steps         JSONBSteps       `gorm:"type:jsonb;not null;default:'[]'" json:"steps"`
	Ingredients   JSONBIngredients `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	PrepTime      int              `json:"prep_time"` // minutes
	CookTime      int              `json:"cook_time"` // minutes
	Servings      int              `json:"servings"`
	Difficulty    string           `gorm:"size:20" json:"difficulty"`
	Cuisine       string           `gorm:"size:50" json:"cuisine"`
	Tags          JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	ImageURL      string           `gorm:"size:255" json:"image_url"`
	Nutrition     Nutrition        `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`
	Ratings       JSONBRatings     `gorm:"type:jsonb;not null;default:'[]'" json:"ratings"`
	AverageRating float64          `json:"average_rating"`
}

// RecomputeAverageRating derives AverageRating from the rating list. Must be
// called whenever Ratings changes; an empty list yields 0.
func (r *Recipe) RecomputeAverageRating() {
	if len(r.Ratings) == 0 {
		r.AverageRating = 0
		return
	}
	var sum float64
	for _, rating := range r.Ratings {
		sum += rating.Value
	}
	r.AverageRating = sum / float64(len(r.Ratings))
}

// IngredientIDs returns the catalog ids referenced by the requirement list.
func (r *Recipe) IngredientIDs() []string {
	ids := make([]string, 0, len(r.Ingredients))
	for _, req := range r.Ingredients {
		ids = append(ids, req.IngredientID)
	}
	return ids
}
