package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/middleware"
	"github.com/kavyadav/adminhub-api/internal/service"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

// NotificationHandler exposes the notification inbox and the realtime
// websocket channel.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("component", "notification_handler").Logger(),
	}
}

// List returns the caller's notifications with the unread counter.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	data, pagination, err := h.service.List(c.UserContext(), userIDFromContext(c), page, limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list notifications")
	}

	return utils.SendPaginated(c, "notifications", data, pagination)
}

// MarkRead marks one notification when an id is given, otherwise all unread
// ones. Ids belonging to other accounts are silently ignored.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	var req dto.MarkReadRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.MarkRead(c.UserContext(), userIDFromContext(c), req.ID); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to mark notifications read")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to mark notifications read")
	}

	return utils.SendSuccess(c, "Notifications marked as read", nil)
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid notification id")
	}

	if err := h.service.Delete(c.UserContext(), userIDFromContext(c), id); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete notification")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete notification")
	}

	return utils.SendSuccess(c, "Notification deleted", nil)
}

// Clear removes all of the caller's notifications.
func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	if err := h.service.Clear(c.UserContext(), userIDFromContext(c)); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to clear notifications")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to clear notifications")
	}

	return utils.SendSuccess(c, "Notifications cleared", nil)
}

// Upgrade promotes the request to a websocket connection when possible. The
// identity extracted by the access gate rides along into the connection
// handler.
func (h *NotificationHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return utils.SendError(c, fiber.StatusUpgradeRequired, "websocket upgrade required")
	}

	c.Locals("ws_user_id", userIDFromContext(c))
	c.Locals("ws_user_role", userRoleFromContext(c))
	c.Locals("ws_correlation_id", middleware.GetCorrelationID(c))
	return c.Next()
}

// Serve blocks on the websocket connection until the peer disconnects.
func (h *NotificationHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		opts := service.ConnectionOptions{Context: context.Background()}
		if id, ok := conn.Locals("ws_user_id").(uint); ok {
			opts.UserID = id
		}
		if role, ok := conn.Locals("ws_user_role").(string); ok {
			opts.Role = role
		}
		if correlation, ok := conn.Locals("ws_correlation_id").(string); ok {
			opts.CorrelationID = correlation
			opts.Context = middleware.ContextWithCorrelation(opts.Context, correlation)
		}

		h.service.ServeConnection(conn, opts)
	})
}
