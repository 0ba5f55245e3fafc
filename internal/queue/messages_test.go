package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrypal/backend/internal/model"
)

func decodePayload(t *testing.T, e Event) map[string]interface{} {
	t.Helper()
	data, err := e.MarshalPayload()
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload))
	return payload
}

func TestIndexEvents(t *testing.T) {
	recipe := &model.Recipe{ID: uuid.New(), Name: "Omelette"}

	create := IndexCreate{Recipe: recipe}
	assert.Equal(t, TopicRecipeIndex, create.Topic())
	assert.Equal(t, recipe.ID.String(), create.Key())
	payload := decodePayload(t, create)
	assert.Equal(t, ActionCreate, payload["action"])
	assert.Equal(t, recipe.ID.String(), payload["recipe_id"])
	require.Contains(t, payload, "recipe")
	assert.Equal(t, "Omelette", payload["recipe"].(map[string]interface{})["name"])

	update := IndexUpdate{Recipe: recipe}
	assert.Equal(t, TopicRecipeIndex, update.Topic())
	assert.Equal(t, recipe.ID.String(), update.Key())
	payload = decodePayload(t, update)
	assert.Equal(t, ActionUpdate, payload["action"])
	assert.Contains(t, payload, "recipe")

	del := IndexDelete{RecipeID: recipe.ID}
	assert.Equal(t, TopicRecipeIndex, del.Topic())
	assert.Equal(t, recipe.ID.String(), del.Key())
	payload = decodePayload(t, del)
	assert.Equal(t, ActionDelete, payload["action"])
	assert.Equal(t, recipe.ID.String(), payload["recipe_id"])
	// Deletes carry no body, only the id.
	assert.NotContains(t, payload, "recipe")
}

func TestAnalyticsEvents(t *testing.T) {
	match := MatchAnalytics{
		IngredientIDs: []string{"egg", "flour"},
		ResultCount:   3,
		Timestamp:     time.Now().UTC(),
	}
	assert.Equal(t, TopicRecipeMatching, match.Topic())
	assert.Empty(t, match.Key(), "analytics events are not keyed")
	payload := decodePayload(t, match)
	assert.Equal(t, float64(3), payload["result_count"])
	assert.Equal(t, []interface{}{"egg", "flour"}, payload["ingredient_ids"])

	search := SearchAnalytics{
		Query:       "omelette",
		Filters:     `{"cuisine":"french"}`,
		ResultCount: 1,
		Timestamp:   time.Now().UTC(),
	}
	assert.Equal(t, TopicRecipeSearch, search.Topic())
	assert.Empty(t, search.Key())
	payload = decodePayload(t, search)
	assert.Equal(t, "omelette", payload["query"])
	assert.Equal(t, `{"cuisine":"french"}`, payload["filters"])
}
