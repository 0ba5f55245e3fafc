package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeAverageRating(t *testing.T) {
	recipe := &Recipe{
		Ratings: JSONBRatings{
			{UserID: uuid.New(), Value: 3},
			{UserID: uuid.New(), Value: 4},
			{UserID: uuid.New(), Value: 5},
		},
	}
	recipe.RecomputeAverageRating()
	assert.InDelta(t, 4.0, recipe.AverageRating, 0.0001)

	recipe.Ratings = nil
	recipe.RecomputeAverageRating()
	assert.Zero(t, recipe.AverageRating)
}

func TestIngredientIDs(t *testing.T) {
	recipe := &Recipe{
		Ingredients: JSONBIngredients{
			{IngredientID: "egg", Quantity: 2},
			{IngredientID: "flour", Quantity: 1},
		},
	}
	assert.Equal(t, []string{"egg", "flour"}, recipe.IngredientIDs())
	assert.Empty(t, (&Recipe{}).IngredientIDs())
}

func TestJSONBColumnRoundTrip(t *testing.T) {
	steps := JSONBSteps{{Number: 1, Instruction: "Whisk.", Duration: 30}}

	value, err := steps.Value()
	require.NoError(t, err)

	var scanned JSONBSteps
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, steps, scanned)

	// Empty lists serialize as [] rather than null.
	empty, err := JSONBIngredients{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	// Drivers hand back either []byte or string.
	var tags JSONBStringArray
	require.NoError(t, tags.Scan(`["quick","dinner"]`))
	assert.Equal(t, JSONBStringArray{"quick", "dinner"}, tags)
	require.NoError(t, tags.Scan([]byte(`["brunch"]`)))
	assert.Equal(t, JSONBStringArray{"brunch"}, tags)
}

func TestRecipeJSONShape(t *testing.T) {
	recipe := &Recipe{
		ID:   uuid.New(),
		Name: "Omelette",
		Ingredients: JSONBIngredients{
			{IngredientID: "egg", Quantity: 2, Unit: "pcs"},
		},
	}

	data, err := json.Marshal(recipe)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, recipe.ID.String(), decoded["id"])
	assert.NotContains(t, decoded, "DeletedAt", "soft-delete marker stays internal")
}
