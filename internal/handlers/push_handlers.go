package handlers

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"saveeat/internal/common"
	"saveeat/internal/models"
	"saveeat/internal/services"
)

const (
	pushModeSelf = "self"
	pushModeCron = "cron"
)

// PushHandlers manages Web Push subscriptions and on-demand digests
type PushHandlers struct {
	service     services.PushService
	cronToken   string
	defaultDays int
	logger      *zap.Logger
	now         func() time.Time
}

func NewPushHandlers(service services.PushService, cronToken string, defaultDays int, logger *zap.Logger) *PushHandlers {
	if defaultDays < 1 {
		defaultDays = 3
	}
	return &PushHandlers{
		service:     service,
		cronToken:   cronToken,
		defaultDays: defaultDays,
		logger:      logger,
		now:         time.Now,
	}
}

// Register mounts the routes. public carries no auth; the cron trigger checks
// its own token.
func (h *PushHandlers) Register(public, protected *echo.Group) {
	public.GET("/push/vapid-public-key", h.VAPIDPublicKey)
	public.GET("/push/send", h.SendCron)
	protected.POST("/push/subscribe", h.Subscribe)
	protected.DELETE("/push/subscribe", h.Unsubscribe)
	protected.POST("/push/send", h.SendSelf)
}

// SendResponse reports one delivery run
type SendResponse struct {
	OK      bool   `json:"ok"`
	Mode    string `json:"mode"`
	Days    int    `json:"days"`
	Sent    int    `json:"sent"`
	Removed int    `json:"removed"`
}

// Subscribe godoc
// @Summary Register a browser push subscription
// @Tags push
// @Accept json
// @Produce json
// @Param subscription body services.SubscriptionInput true "PushSubscription JSON"
// @Success 201 {object} map[string]bool
// @Router /v1/push/subscribe [post]
func (h *PushHandlers) Subscribe(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var in services.SubscriptionInput
	if err := c.Bind(&in); err != nil {
		return common.SendClientError(c, "Invalid subscription")
	}
	if err := h.service.Subscribe(c.Request().Context(), userID, &in); err != nil {
		return respondError(c, err, "Subscription")
	}
	return c.JSON(http.StatusCreated, map[string]bool{"ok": true})
}

// Unsubscribe godoc
// @Summary Remove a push subscription
// @Tags push
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /v1/push/subscribe [delete]
func (h *PushHandlers) Unsubscribe(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Endpoint string `json:"endpoint" query:"endpoint"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := h.service.Unsubscribe(c.Request().Context(), userID, req.Endpoint); err != nil {
		return respondError(c, err, "Subscription")
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// VAPIDPublicKey godoc
// @Summary Public VAPID key for PushManager.subscribe
// @Tags push
// @Produce json
// @Success 200 {object} map[string]string
// @Router /v1/push/vapid-public-key [get]
func (h *PushHandlers) VAPIDPublicKey(c echo.Context) error {
	key := h.service.VAPIDPublicKey()
	if key == "" {
		return common.SendUnavailableError(c, "Push notifications are not configured")
	}
	return c.JSON(http.StatusOK, map[string]string{"publicKey": key})
}

// SendSelf godoc
// @Summary Send the caller's expiry digest to their devices
// @Tags push
// @Produce json
// @Param days query int false "Window in days, default 3"
// @Success 200 {object} SendResponse
// @Router /v1/push/send [post]
func (h *PushHandlers) SendSelf(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	days := parseDays(c.QueryParam("days"), h.defaultDays)
	res, err := h.service.SendDigest(c.Request().Context(), userID, days, h.now())
	if err != nil {
		h.logger.Error("push send failed", zap.Stringer("user_id", userID), zap.Error(err))
		return respondError(c, err, "Subscription")
	}
	return c.JSON(http.StatusOK, sendResponse(pushModeSelf, days, res))
}

// SendCron godoc
// @Summary Send expiry digests to every subscribed user
// @Description Requires the configured cron token.
// @Tags push
// @Produce json
// @Param days query int false "Window in days, default 3"
// @Param token query string true "Cron token"
// @Success 200 {object} SendResponse
// @Router /v1/push/send [get]
func (h *PushHandlers) SendCron(c echo.Context) error {
	if !h.validCronToken(c.QueryParam("token")) {
		return common.SendUnauthorizedError(c)
	}

	days := parseDays(c.QueryParam("days"), h.defaultDays)
	res, err := h.service.SendAll(c.Request().Context(), days, h.now())
	if err != nil {
		h.logger.Error("cron push send failed", zap.Error(err))
		return respondError(c, err, "Subscription")
	}
	return c.JSON(http.StatusOK, sendResponse(pushModeCron, days, res))
}

func (h *PushHandlers) validCronToken(token string) bool {
	if h.cronToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronToken)) == 1
}

func sendResponse(mode string, days int, res models.PushResult) SendResponse {
	return SendResponse{OK: true, Mode: mode, Days: days, Sent: res.Sent, Removed: res.Removed}
}

// parseDays falls back to def on garbage and clamps to at least one day
func parseDays(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return max(n, 1)
}
