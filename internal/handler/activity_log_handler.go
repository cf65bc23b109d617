package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kavyadav/adminhub-api/internal/models"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/service"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

// ActivityLogHandler exposes the audit trail listing.
type ActivityLogHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityLogHandler constructs an activity log handler.
func NewActivityLogHandler(service service.ActivityService, logger zerolog.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_log_handler").Logger(),
	}
}

// List returns audit entries newest first. Viewing the trail is itself
// recorded as a VIEW entry.
func (h *ActivityLogHandler) List(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	filter := repository.ActivityLogFilter{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Module: c.Query("module"),
		Action: c.Query("action"),
	}

	entries, pagination, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity logs")
	}

	actor := actorFromContext(c)
	h.service.Record(service.ActivityEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      models.ActionView,
		Module:      "activity_logs",
		Description: "viewed activity logs",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})

	return utils.SendPaginated(c, "activity logs", entries, pagination)
}
