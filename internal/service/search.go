package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"

	"github.com/pantrypal/backend/internal/model"
)

// MaxPageSize caps result pages regardless of what the client requests.
const MaxPageSize = 100

// DefaultPageSize applies when the client does not specify a page size.
const DefaultPageSize = 20

// SearchFilters are the hard constraints applied to a recipe search.
type SearchFilters struct {
	Tags        []string `json:"tags,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"`
	MaxPrepTime int      `json:"max_prep_time,omitempty"`
	MaxCookTime int      `json:"max_cook_time,omitempty"`
}

// RecipePage is one page of scored recipe results with an exact total.
type RecipePage struct {
	Items    []*model.Recipe `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// IngredientPage is one page of ingredient catalog results.
type IngredientPage struct {
	Items    []*model.Ingredient `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// SearchService translates domain search parameters into Elasticsearch
// queries and normalizes the results. Index unavailability or malformed
// queries surface as search errors, never as an empty page.
type SearchService struct {
	client          *elasticsearch.Client
	recipeIndex     string
	ingredientIndex string
}

// NewSearchService creates a new SearchService instance
func NewSearchService(client *elasticsearch.Client, recipeIndex, ingredientIndex string) *SearchService {
	return &SearchService{
		client:          client,
		recipeIndex:     recipeIndex,
		ingredientIndex: ingredientIndex,
	}
}

// normalizePage clamps pagination to page >= 1 and size <= MaxPageSize.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// SearchRecipes runs a boosted full-text query with hard filters. Supplied
// ingredient names boost recipes containing them without excluding partial
// matches.
func (s *SearchService) SearchRecipes(ctx context.Context, query string, ingredientNames []string, filters SearchFilters, page, pageSize int) (*RecipePage, error) {
	page, pageSize = normalizePage(page, pageSize)

	boolQuery := map[string]interface{}{}

	if query != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  query,
					"fields": []string{"name^3", "description^2", "ingredients.name"},
				},
			},
		}
	} else {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{"match_all": map[string]interface{}{}},
		}
	}

	if len(ingredientNames) > 0 {
		// Containment boost: more matching ingredients score higher, but
		// recipes missing some still surface.
		should := make([]interface{}, 0, len(ingredientNames))
		for _, name := range ingredientNames {
			should = append(should, map[string]interface{}{
				"nested": map[string]interface{}{
					"path": "ingredients",
					"query": map[string]interface{}{
						"match": map[string]interface{}{
							"ingredients.name": name,
						},
					},
					"boost": 2.0,
				},
			})
		}
		boolQuery["should"] = should
	}

	filter := buildRecipeFilters(filters)
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	body := map[string]interface{}{
		"from":             (page - 1) * pageSize,
		"size":             pageSize,
		"track_total_hits": true,
		"query":            map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"average_rating": map[string]interface{}{"order": "desc"}},
		},
	}

	var result esResponse
	if err := s.execute(ctx, s.recipeIndex, body, &result); err != nil {
		return nil, err
	}

	items := make([]*model.Recipe, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var recipe model.Recipe
		if err := json.Unmarshal(hit.Source, &recipe); err != nil {
			continue
		}
		items = append(items, &recipe)
	}

	return &RecipePage{
		Items:    items,
		Total:    result.Hits.Total.Value,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func buildRecipeFilters(filters SearchFilters) []interface{} {
	var filter []interface{}
	if len(filters.Tags) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"tags": filters.Tags},
		})
	}
	if filters.Difficulty != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"difficulty": filters.Difficulty},
		})
	}
	if filters.Cuisine != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"cuisine": filters.Cuisine},
		})
	}
	if filters.MaxPrepTime > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"prep_time": map[string]interface{}{"lte": filters.MaxPrepTime}},
		})
	}
	if filters.MaxCookTime > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"cook_time": map[string]interface{}{"lte": filters.MaxCookTime}},
		})
	}
	return filter
}

// SearchIngredients runs a fuzzy multi-field match over the ingredient
// catalog, optionally constrained to categories.
func (s *SearchService) SearchIngredients(ctx context.Context, query string, categories []string, page, pageSize int) (*IngredientPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":     query,
					"fields":    []string{"name^3", "recognition_tags"},
					"fuzziness": "AUTO",
				},
			},
		},
	}

	if len(categories) > 0 {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{
				"terms": map[string]interface{}{"category": categories},
			},
		}
	}

	body := map[string]interface{}{
		"from":             (page - 1) * pageSize,
		"size":             pageSize,
		"track_total_hits": true,
		"query":            map[string]interface{}{"bool": boolQuery},
	}

	var result esResponse
	if err := s.execute(ctx, s.ingredientIndex, body, &result); err != nil {
		return nil, err
	}

	items := make([]*model.Ingredient, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var ingredient model.Ingredient
		if err := json.Unmarshal(hit.Source, &ingredient); err != nil {
			continue
		}
		items = append(items, &ingredient)
	}

	return &IngredientPage{
		Items:    items,
		Total:    result.Hits.Total.Value,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// FindSimilarRecipes runs a more-like-this query relative to the given
// recipe. The source recipe is excluded even when it scores as self-similar.
func (s *SearchService) FindSimilarRecipes(ctx context.Context, recipeID uuid.UUID, limit int) ([]*model.Recipe, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"more_like_this": map[string]interface{}{
							"fields": []string{"name", "ingredients.name", "tags", "cuisine"},
							"like": []interface{}{
								map[string]interface{}{
									"_index": s.recipeIndex,
									"_id":    recipeID.String(),
								},
							},
							"min_term_freq": 1,
							"min_doc_freq":  1,
						},
					},
				},
				"must_not": []interface{}{
					map[string]interface{}{
						"ids": map[string]interface{}{
							"values": []string{recipeID.String()},
						},
					},
				},
			},
		},
	}

	var result esResponse
	if err := s.execute(ctx, s.recipeIndex, body, &result); err != nil {
		return nil, err
	}

	recipes := make([]*model.Recipe, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var recipe model.Recipe
		if err := json.Unmarshal(hit.Source, &recipe); err != nil {
			continue
		}
		recipes = append(recipes, &recipe)
	}
	return recipes, nil
}

// execute marshals the query body, runs the search, and decodes the
// response into result.
func (s *SearchService) execute(ctx context.Context, index string, body map[string]interface{}, result *esResponse) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal query: %v", ErrSearch, err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to search %s: %v", ErrSearch, index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: elasticsearch error: %s", ErrSearch, res.String())
	}

	if err := json.NewDecoder(res.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrSearch, err)
	}
	return nil
}

// esResponse is the generic Elasticsearch search response structure.
type esResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
