package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"saveeat/internal/common"
	"saveeat/internal/models"
	"saveeat/internal/services"
)

type RecipeHandlers struct {
	service services.RecipeService
	now     func() time.Time
}

func NewRecipeHandlers(service services.RecipeService) *RecipeHandlers {
	return &RecipeHandlers{service: service, now: time.Now}
}

func (h *RecipeHandlers) Register(g *echo.Group) {
	g.POST("/recipes/suggest", h.Suggest)
}

// Suggest godoc
// @Summary Suggest a dish from on-hand ingredients
// @Description Without items the caller's unexpired pantry is used.
// @Tags recipes
// @Accept json
// @Produce json
// @Success 200 {object} map[string][]models.MenuSuggestion
// @Failure 429 {object} common.ErrorResponse
// @Failure 503 {object} common.ErrorResponse
// @Router /v1/recipes/suggest [post]
func (h *RecipeHandlers) Suggest(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return common.SendClientError(c, "Invalid request format")
	}

	var items []models.RecipeIngredient
	if len(req.Items) > 0 && string(req.Items) != "null" {
		if err := json.Unmarshal(req.Items, &items); err != nil {
			return common.SendValidationError(c, "items", "must be an array")
		}
		if items == nil {
			items = []models.RecipeIngredient{}
		}
	}

	suggestions, err := h.service.Suggest(c.Request().Context(), userID, items, h.now())
	if err != nil {
		return respondError(c, err, "Recipe")
	}
	return c.JSON(http.StatusOK, map[string][]models.MenuSuggestion{"suggestions": suggestions})
}
