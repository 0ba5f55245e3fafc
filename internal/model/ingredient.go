package model

// Ingredient is a catalog entry returned by ingredient search. The catalog
// itself is maintained by the recognition pipeline; this type only mirrors
// what the search index stores.
type Ingredient struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	RecognitionTags []string `json:"recognition_tags,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
}
