package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edunexa/edunexa-api/internal/service"
	"github.com/edunexa/edunexa-api/internal/utils"
)

// ProgressHandler serves the per-course progress read model.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches progress endpoints to the course router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/:id/progress", h.ownProgress)
	router.Get("/:id/students/:studentID/progress", h.studentProgress)
}

func (h *ProgressHandler) ownProgress(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.service.GetCourseProgress(c.UserContext(), principalFromContext(c), courseID, 0)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *ProgressHandler) studentProgress(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.service.GetCourseProgress(c.UserContext(), principalFromContext(c), courseID, studentID)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}

func (h *ProgressHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
