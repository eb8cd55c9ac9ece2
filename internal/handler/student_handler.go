package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/university-api/internal/dto"
	"github.com/noah-isme/university-api/internal/service"
	"github.com/noah-isme/university-api/internal/utils"
)

// StudentDeletedMessage confirms a delete request, whether or not a row matched.
const StudentDeletedMessage = "Student deleted successfully"

// StudentHandler wires the student CRUD endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes to the router.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Post("/student/", h.create)
	router.Get("/students/", h.list)
	router.Delete("/student/:id", h.delete)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusUnprocessableEntity, "invalid payload")
	}

	student, err := h.service.Create(c.UserContext(), payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, validationMessage(err))
		case errors.Is(err, service.ErrStudentCreateFailed):
			requestLogger(h.logger, c).Warn().Msg("insert returned no row")
			return utils.SendError(c, fiber.StatusBadRequest, "Error creating student")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create student")
			return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	requestLogger(h.logger, c).Info().Int64("student_id", student.ID).Msg("student created")
	return utils.SendOK(c, student)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.service.List(c.UserContext())
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			return utils.SendError(c, fiber.StatusBadRequest, "Student not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list students")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendOK(c, students)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Int64("student_id", id).Msg("failed to delete student")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendOK(c, dto.MessageResponse{Message: StudentDeletedMessage})
}
