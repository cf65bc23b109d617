package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/kavyadav/adminhub-api/internal/dto"
	"github.com/kavyadav/adminhub-api/internal/repository"
	"github.com/kavyadav/adminhub-api/internal/service"
	"github.com/kavyadav/adminhub-api/internal/utils"
)

// StudentHandler exposes student record endpoints.
type StudentHandler struct {
	service   service.StudentService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(service service.StudentService, validate *validator.Validate, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "student_handler").Logger(),
	}
}

// Create registers a student. Photo and documents arrive as multipart files.
func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendValidationError(c, validationDetails(err))
	}

	student, err := h.service.Create(c.UserContext(), actorFromContext(c), req, studentFiles(c))
	if err != nil {
		return h.uploadOrInternal(c, err, "failed to create student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Student created successfully", student)
}

// List returns students matching the query filters.
func (h *StudentHandler) List(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	filter := repository.StudentFilter{
		Search:        c.Query("search"),
		Gender:        c.Query("gender"),
		Course:        c.Query("course"),
		Qualification: c.Query("qualification"),
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.Query("sort_order"),
		Page:          page,
		Limit:         limit,
	}

	students, pagination, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list students")
	}

	return utils.SendPaginated(c, "students", students, pagination)
}

// Get returns one student by id.
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	student, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load student")
	}

	return utils.SendSuccess(c, "student", student)
}

// Update applies partial changes. New documents are appended while a new
// photo replaces the old one.
func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	var req dto.UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendValidationError(c, validationDetails(err))
	}

	student, err := h.service.Update(c.UserContext(), actorFromContext(c), id, req, studentFiles(c))
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Student not found")
		}
		return h.uploadOrInternal(c, err, "failed to update student")
	}

	return utils.SendSuccess(c, "Student updated successfully", student)
}

// Delete removes a student record permanently.
func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student id")
	}

	if err := h.service.Delete(c.UserContext(), actorFromContext(c), id); err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "Student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete student")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete student")
	}

	return utils.SendSuccess(c, "Student deleted successfully", nil)
}

func (h *StudentHandler) uploadOrInternal(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "file exceeds maximum allowed size")
	case errors.Is(err, service.ErrUploadTypeNotAllowed):
		return utils.SendError(c, fiber.StatusBadRequest, "photo must be an image")
	case errors.Is(err, service.ErrTooManyDocuments):
		return utils.SendError(c, fiber.StatusBadRequest, "too many documents")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

func studentFiles(c *fiber.Ctx) service.StudentFiles {
	files := service.StudentFiles{}
	if photo, err := c.FormFile("photo"); err == nil {
		files.Photo = photo
	}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files.Documents = form.File["documents"]
	}
	return files
}
