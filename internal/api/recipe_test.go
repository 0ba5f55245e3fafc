package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pantrypal/backend/internal/mocks"
	"github.com/pantrypal/backend/internal/model"
	"github.com/pantrypal/backend/internal/service"
)

func setupTestRouter(t *testing.T, svc *mocks.MockRecipeService) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokenService := service.NewTokenService("test-secret")
	handler := NewRecipeHandler(svc, nil, tokenService)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router, tokenService
}

func bearerToken(t *testing.T, tokenService *service.TokenService, userID uuid.UUID) string {
	t.Helper()
	token, err := tokenService.GenerateToken(userID, "chef")
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path string, body interface{}, auth string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateRecipeRequiresAuth(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	w := doJSON(router, http.MethodPost, "/api/v1/recipes", gin.H{"name": "Omelette"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/recipes", gin.H{"name": "Omelette"}, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc.AssertNotCalled(t, "CreateRecipe", mock.Anything, mock.Anything)
}

func TestCreateRecipeSetsAuthorFromToken(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, tokenService := setupTestRouter(t, svc)

	userID := uuid.New()
	created := &model.Recipe{ID: uuid.New(), Name: "Omelette", AuthorID: userID}
	svc.On("CreateRecipe", mock.Anything, mock.MatchedBy(func(r *model.Recipe) bool {
		return r.Name == "Omelette" && r.AuthorID == userID
	})).Return(created, nil).Once()

	w := doJSON(router, http.MethodPost, "/api/v1/recipes", gin.H{
		"name": "Omelette",
		"ingredients": []gin.H{
			{"ingredient_id": "egg", "quantity": 2, "unit": "pcs"},
		},
	}, bearerToken(t, tokenService, userID))

	require.Equal(t, http.StatusCreated, w.Code)
	var got model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	svc.AssertExpectations(t)
}

func TestCreateRecipeValidationError(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, tokenService := setupTestRouter(t, svc)

	svc.On("CreateRecipe", mock.Anything, mock.Anything).Return(nil, service.ErrValidation).Once()

	w := doJSON(router, http.MethodPost, "/api/v1/recipes", gin.H{"name": "Toast"},
		bearerToken(t, tokenService, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body["code"])
}

func TestGetRecipeInvalidID(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	w := doJSON(router, http.MethodGet, "/api/v1/recipes/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetRecipeByID", mock.Anything, mock.Anything)
}

func TestGetRecipeAbsentReturnsNull(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	id := uuid.New()
	svc.On("GetRecipeByID", mock.Anything, id).Return(nil, nil).Once()

	w := doJSON(router, http.MethodGet, "/api/v1/recipes/"+id.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "null", string(body["recipe"]))
}

func TestGetRecipeFound(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	recipe := &model.Recipe{ID: uuid.New(), Name: "Omelette"}
	svc.On("GetRecipeByID", mock.Anything, recipe.ID).Return(recipe, nil).Once()

	w := doJSON(router, http.MethodGet, "/api/v1/recipes/"+recipe.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Recipe *model.Recipe `json:"recipe"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Recipe)
	assert.Equal(t, "Omelette", body.Recipe.Name)
}

func TestUpdateRecipeNotFound(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, tokenService := setupTestRouter(t, svc)

	id := uuid.New()
	svc.On("UpdateRecipe", mock.Anything, id, mock.Anything).Return(nil, service.ErrNotFound).Once()

	w := doJSON(router, http.MethodPut, "/api/v1/recipes/"+id.String(), gin.H{"name": "Ghost"},
		bearerToken(t, tokenService, uuid.New()))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
}

func TestDeleteRecipe(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, tokenService := setupTestRouter(t, svc)

	id := uuid.New()
	svc.On("DeleteRecipe", mock.Anything, id).Return(nil).Once()

	w := doJSON(router, http.MethodDelete, "/api/v1/recipes/"+id.String(), nil,
		bearerToken(t, tokenService, uuid.New()))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id.String(), body["id"])
	svc.AssertExpectations(t)
}

func TestMatchRecipes(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	matches := []*model.Recipe{{ID: uuid.New(), Name: "Omelette"}}
	svc.On("FindRecipesByIngredients", mock.Anything, []string{"egg", "butter"}).Return(matches, nil).Once()

	w := doJSON(router, http.MethodPost, "/api/v1/recipes/match",
		gin.H{"ingredient_ids": []string{"egg", "butter"}}, "")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Recipes []*model.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Recipes, 1)
	assert.Equal(t, "Omelette", body.Recipes[0].Name)
}

func TestMatchRecipesAcceptsCamelCase(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	svc.On("FindRecipesByIngredients", mock.Anything, []string{"egg"}).
		Return([]*model.Recipe{}, nil).Once()

	w := doJSON(router, http.MethodPost, "/api/v1/recipes/match",
		gin.H{"ingredientIds": []string{"egg"}}, "")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSearchRecipesParsesQueryParams(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	page := &service.RecipePage{Items: []*model.Recipe{}, Total: 0, Page: 2, PageSize: 10}
	wantFilters := service.SearchFilters{
		Tags:        []string{"quick", "dinner"},
		Difficulty:  "easy",
		Cuisine:     "french",
		MaxPrepTime: 15,
		MaxCookTime: 30,
	}
	svc.On("SearchRecipes", mock.Anything, "omelette", []string{"egg"}, wantFilters, 2, 10).
		Return(page, nil).Once()

	w := doJSON(router, http.MethodGet,
		"/api/v1/recipes/search?query=omelette&ingredients=egg&tags=quick,dinner"+
			"&difficulty=easy&cuisine=french&maxPrepTime=15&maxCookTime=30&page=2&pageSize=10",
		nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSearchRecipesSearchError(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	svc.On("SearchRecipes", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, service.ErrSearch).Once()

	w := doJSON(router, http.MethodGet, "/api/v1/recipes/search?query=soup", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "search_error", body["code"])
}

func TestSimilarRecipes(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	id := uuid.New()
	similar := []*model.Recipe{{ID: uuid.New(), Name: "Frittata"}}
	svc.On("FindSimilarRecipes", mock.Anything, id, 5).Return(similar, nil).Once()

	w := doJSON(router, http.MethodGet, "/api/v1/recipes/"+id.String()+"/similar?limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Recipes []*model.Recipe `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Recipes, 1)
	assert.Equal(t, "Frittata", body.Recipes[0].Name)
}

func TestSimilarRecipesInvalidID(t *testing.T) {
	svc := &mocks.MockRecipeService{}
	router, _ := setupTestRouter(t, svc)

	w := doJSON(router, http.MethodGet, "/api/v1/recipes/nope/similar", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
