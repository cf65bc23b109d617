package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kavyadav/adminhub-api/internal/service"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

// ReportHandler exposes the reporting aggregations.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs a report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Stats returns system-wide totals and 30-day aggregations.
func (h *ReportHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), actorFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build report")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build report")
	}

	return utils.SendSuccess(c, "report", stats)
}

// UserReport returns the paginated activity history of one account.
func (h *ReportHandler) UserReport(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	report, pagination, err := h.service.UserReport(c.UserContext(), actorFromContext(c), id, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "User not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build user report")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build user report")
	}

	return utils.SendPaginated(c, "user report", report, pagination)
}
