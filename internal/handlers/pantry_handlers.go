package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"saveeat/internal/common"
	"saveeat/internal/models"
	"saveeat/internal/services"
	"saveeat/internal/viewengine"
)

// PantryHandlers serves the caller's pantry
type PantryHandlers struct {
	service services.PantryService
	now     func() time.Time
}

// NewPantryHandlers creates pantry handlers. loc is the zone used to decide
// "today" when the client does not send its own date.
func NewPantryHandlers(service services.PantryService, loc *time.Location) *PantryHandlers {
	if loc == nil {
		loc = time.UTC
	}
	return &PantryHandlers{
		service: service,
		now:     func() time.Time { return time.Now().In(loc) },
	}
}

func (h *PantryHandlers) Register(g *echo.Group) {
	g.GET("/pantry", h.ListItems)
	g.POST("/pantry", h.CreateItem)
	g.GET("/pantry/:id", h.GetItem)
	g.PATCH("/pantry/:id", h.UpdateItem)
	g.DELETE("/pantry/:id", h.DeleteItem)
}

// today honours a client supplied ?today=YYYY-MM-DD so that badges follow the
// user's calendar rather than the server's
func (h *PantryHandlers) today(c echo.Context) time.Time {
	if t, ok := viewengine.ParseExpiry(c.QueryParam("today")); ok {
		return t
	}
	return h.now()
}

// ListItems godoc
// @Summary List pantry items
// @Tags pantry
// @Produce json
// @Param q query string false "Keyword"
// @Param within query int false "Only items expiring within N days"
// @Param expired query string false "on to include expired items"
// @Param unset query string false "on to include items without expiry"
// @Param sort query string false "expiry_asc, expiry_desc, name_asc or newest"
// @Success 200 {object} services.PantryList
// @Router /v1/pantry [get]
func (h *PantryHandlers) ListItems(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	q := viewengine.ParseQuery(c.QueryParams())
	list, err := h.service.List(c.Request().Context(), userID, q, h.today(c))
	if err != nil {
		return respondError(c, err, "Pantry")
	}
	return c.JSON(http.StatusOK, list)
}

// CreateItem godoc
// @Summary Add a pantry item
// @Tags pantry
// @Accept json
// @Produce json
// @Param item body services.PantryItemInput true "Item"
// @Success 201 {object} actionResponse
// @Router /v1/pantry [post]
func (h *PantryHandlers) CreateItem(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var in services.PantryItemInput
	if err := c.Bind(&in); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	item, res, err := h.service.Create(c.Request().Context(), userID, &in)
	return respondAction(c, http.StatusCreated, res, item, err)
}

// GetItem godoc
// @Summary Get a pantry item
// @Tags pantry
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} models.PantryItem
// @Router /v1/pantry/{id} [get]
func (h *PantryHandlers) GetItem(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	item, err := h.service.Get(c.Request().Context(), userID, id)
	if err != nil {
		return respondError(c, err, "Item")
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateItem godoc
// @Summary Update a pantry item
// @Description Partial update. An explicit null expiry_date clears the date.
// @Tags pantry
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} actionResponse
// @Router /v1/pantry/{id} [patch]
func (h *PantryHandlers) UpdateItem(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	upd, field, err := decodePantryUpdate(c)
	if err != nil {
		return common.SendValidationError(c, field, err.Error())
	}

	item, res, err := h.service.Update(c.Request().Context(), userID, id, upd)
	return respondAction(c, http.StatusOK, res, item, err)
}

// decodePantryUpdate reads a PATCH body keeping the difference between a
// missing unit or expiry_date and an explicit null
func decodePantryUpdate(c echo.Context) (*models.PantryItemUpdate, string, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return nil, "body", err
	}

	upd := &models.PantryItemUpdate{}
	fields := []struct {
		name string
		dst  any
	}{
		{"name", &upd.Name},
		{"quantity", &upd.Quantity},
		{"unit", &upd.Unit},
		{"expiry_date", &upd.ExpiryDate},
	}
	for _, f := range fields {
		v, present := raw[f.name]
		if !present {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return nil, f.name, err
		}
	}
	if v, present := raw["unit"]; present && string(v) == "null" {
		upd.ClearUnit = true
	}
	if v, present := raw["expiry_date"]; present && string(v) == "null" {
		upd.ClearExpiry = true
	}
	return upd, "", nil
}

// DeleteItem godoc
// @Summary Delete a pantry item
// @Tags pantry
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} actionResponse
// @Router /v1/pantry/{id} [delete]
func (h *PantryHandlers) DeleteItem(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	res, err := h.service.Delete(c.Request().Context(), userID, id)
	return respondAction(c, http.StatusOK, res, nil, err)
}
