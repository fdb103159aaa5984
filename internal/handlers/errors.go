package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"saveeat/internal/common"
	"saveeat/internal/models"
	"saveeat/internal/services"
)

// statusFor maps service errors onto HTTP status codes and error codes
func statusFor(err error) (int, *common.ErrorResponse) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, common.CreateErrorResponse("VALIDATION_ERROR", "Validation failed",
			map[string]string{verr.Field: verr.Message})
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, common.CreateErrorResponse("NOT_FOUND", "Not found", nil)
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many requests, try again later", nil)
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable, common.CreateErrorResponse("UNAVAILABLE", err.Error(), nil)
	default:
		return http.StatusInternalServerError, common.CreateErrorResponse("SERVER_ERROR", "Internal server error", nil)
	}
}

func respondError(c echo.Context, err error, resource string) error {
	status, body := statusFor(err)
	if status == http.StatusNotFound {
		return common.SendNotFoundError(c, resource)
	}
	return c.JSON(status, body)
}

// actionResponse is the body of pantry mutations. Failures carry both the
// user-facing message and the structured error.
type actionResponse struct {
	models.ActionResult
	Item  *models.PantryItem `json:"item,omitempty"`
	Error any                `json:"error,omitempty"`
}

func respondAction(c echo.Context, status int, res models.ActionResult, item *models.PantryItem, err error) error {
	if err != nil {
		code, body := statusFor(err)
		return c.JSON(code, actionResponse{ActionResult: res, Error: body.Error})
	}
	return c.JSON(status, actionResponse{ActionResult: res, Item: item})
}

func currentUser(c echo.Context) (uuid.UUID, bool) {
	return common.GetUserIDFromContext(c.Request().Context())
}

// viewer returns the caller when the request is authenticated
func viewer(c echo.Context) *uuid.UUID {
	if id, ok := currentUser(c); ok {
		return &id
	}
	return nil
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}
