package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"saveeat/internal/common"
	"saveeat/internal/services"
)

type FollowHandlers struct {
	service services.FollowService
}

func NewFollowHandlers(service services.FollowService) *FollowHandlers {
	return &FollowHandlers{service: service}
}

func (h *FollowHandlers) Register(g *echo.Group) {
	g.GET("/follows/following", h.Following)
	g.GET("/follows/followers", h.Followers)
	g.POST("/follows/:userId", h.Follow)
	g.DELETE("/follows/:userId", h.Unfollow)
}

// Follow godoc
// @Summary Follow a user
// @Tags follows
// @Param userId path string true "User to follow"
// @Success 200 {object} map[string]bool
// @Router /v1/follows/{userId} [post]
func (h *FollowHandlers) Follow(c echo.Context) error {
	return h.edge(c, h.service.Follow)
}

// Unfollow godoc
// @Summary Stop following a user
// @Tags follows
// @Param userId path string true "User to unfollow"
// @Success 200 {object} map[string]bool
// @Router /v1/follows/{userId} [delete]
func (h *FollowHandlers) Unfollow(c echo.Context) error {
	return h.edge(c, h.service.Unfollow)
}

func (h *FollowHandlers) edge(c echo.Context, op func(ctx context.Context, followerID, followeeID uuid.UUID) error) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	target, err := pathUUID(c, "userId")
	if err != nil {
		return err
	}
	if err := op(c.Request().Context(), userID, target); err != nil {
		return respondError(c, err, "User")
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// Following godoc
// @Summary Users a user follows
// @Tags follows
// @Param userId query string true "User ID"
// @Success 200 {object} map[string][]string
// @Router /v1/follows/following [get]
func (h *FollowHandlers) Following(c echo.Context) error {
	return h.list(c, h.service.Following)
}

// Followers godoc
// @Summary Users following a user
// @Tags follows
// @Param userId query string true "User ID"
// @Success 200 {object} map[string][]string
// @Router /v1/follows/followers [get]
func (h *FollowHandlers) Followers(c echo.Context) error {
	return h.list(c, h.service.Followers)
}

func (h *FollowHandlers) list(c echo.Context, op func(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)) error {
	userID, err := common.ValidateUUID(c.QueryParam("userId"), "userId")
	if err != nil {
		return common.SendValidationError(c, "userId", err.Error())
	}
	ids, err := op(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "User")
	}
	return c.JSON(http.StatusOK, map[string][]uuid.UUID{"userIds": ids})
}
