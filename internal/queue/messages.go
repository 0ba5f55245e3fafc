package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pantrypal/backend/internal/model"
)

// Topics consumed by the indexer and analytics pipeline.
const (
	TopicRecipeIndex    = "recipe.index"
	TopicRecipeMatching = "recipe.matching"
	TopicRecipeSearch   = "recipe.search"
)

// Actions carried on the recipe.index topic.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Event is a sealed set of message variants, one per topic semantics, so
// consumers can switch on the concrete type instead of branching on string
// fields.
type Event interface {
	Topic() string
	// Key is the Kafka partition key; events for one recipe stay ordered.
	Key() string
	MarshalPayload() ([]byte, error)
}

// indexPayload is the wire format on recipe.index.
type indexPayload struct {
	Action   string        `json:"action"`
	RecipeID uuid.UUID     `json:"recipe_id"`
	Recipe   *model.Recipe `json:"recipe,omitempty"`
}

// IndexCreate asks the indexer to add a freshly persisted recipe.
type IndexCreate struct {
	Recipe *model.Recipe
}

func (e IndexCreate) Topic() string { return TopicRecipeIndex }
func (e IndexCreate) Key() string   { return e.Recipe.ID.String() }

func (e IndexCreate) MarshalPayload() ([]byte, error) {
	return json.Marshal(indexPayload{Action: ActionCreate, RecipeID: e.Recipe.ID, Recipe: e.Recipe})
}

// IndexUpdate asks the indexer to reindex an updated recipe.
type IndexUpdate struct {
	Recipe *model.Recipe
}

func (e IndexUpdate) Topic() string { return TopicRecipeIndex }
func (e IndexUpdate) Key() string   { return e.Recipe.ID.String() }

func (e IndexUpdate) MarshalPayload() ([]byte, error) {
	return json.Marshal(indexPayload{Action: ActionUpdate, RecipeID: e.Recipe.ID, Recipe: e.Recipe})
}

// IndexDelete asks the indexer to drop a deleted recipe.
type IndexDelete struct {
	RecipeID uuid.UUID
}

func (e IndexDelete) Topic() string { return TopicRecipeIndex }
func (e IndexDelete) Key() string   { return e.RecipeID.String() }

func (e IndexDelete) MarshalPayload() ([]byte, error) {
	return json.Marshal(indexPayload{Action: ActionDelete, RecipeID: e.RecipeID})
}

// MatchAnalytics records an ingredient-match query for the analytics
// pipeline.
type MatchAnalytics struct {
	IngredientIDs []string  `json:"ingredient_ids"`
	ResultCount   int       `json:"result_count"`
	Timestamp     time.Time `json:"timestamp"`
}

func (e MatchAnalytics) Topic() string { return TopicRecipeMatching }
func (e MatchAnalytics) Key() string   { return "" }

func (e MatchAnalytics) MarshalPayload() ([]byte, error) {
	return json.Marshal(e)
}

// SearchAnalytics records a full-text search for the analytics pipeline.
type SearchAnalytics struct {
	Query       string    `json:"query"`
	Filters     string    `json:"filters,omitempty"`
	ResultCount int       `json:"result_count"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e SearchAnalytics) Topic() string { return TopicRecipeSearch }
func (e SearchAnalytics) Key() string   { return "" }

func (e SearchAnalytics) MarshalPayload() ([]byte, error) {
	return json.Marshal(e)
}
