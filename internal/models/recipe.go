package models

// RecipeIngredient is an on-hand ingredient offered to the recipe generator
type RecipeIngredient struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity,omitempty"`
}

// GeneratedRecipe is the JSON document the language model is asked to produce
type GeneratedRecipe struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"` // "name: amount"
	Steps       []string `json:"steps"`
	Sides       []string `json:"sides,omitempty"`
}

// MenuSuggestion is a recipe suggestion as presented to clients
type MenuSuggestion struct {
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	Description string   `json:"description"`
	MainReason  string   `json:"main_reason"`
	Missing     []string `json:"missing"`
	Sides       []string `json:"sides"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}
