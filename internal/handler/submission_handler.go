package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edunexa/edunexa-api/internal/dto"
	"github.com/edunexa/edunexa-api/internal/observability"
	"github.com/edunexa/edunexa-api/internal/repository"
	"github.com/edunexa/edunexa-api/internal/service"
	"github.com/edunexa/edunexa-api/internal/utils"
)

// SubmissionHandler wires submission and grading HTTP routes.
type SubmissionHandler struct {
	submissions service.SubmissionService
	grading     service.GradingService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(submissions service.SubmissionService, grading service.GradingService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		grading:     grading,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", studentOnly(), h.submit)
	router.Get("/:id", h.get)
	router.Put("/:id", studentOnly(), h.resubmit)
	router.Post("/:id/grade", teacherOnly(), h.grade)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	filter := repository.SubmissionFilter{}

	if value := c.Query("assignment_id"); value != "" {
		id, err := parseQueryInt(c, "assignment_id")
		if err != nil || id <= 0 {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid assignment id")
		}
		assignmentID := uint(id)
		filter.AssignmentID = &assignmentID
	}
	if value := c.Query("is_reviewed"); value != "" {
		reviewed := value == "true"
		filter.IsReviewed = &reviewed
	}

	submissions, err := h.submissions.List(c.UserContext(), principalFromContext(c), filter)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.submissions.Submit(c.UserContext(), principalFromContext(c), payload)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	timeliness := "on_time"
	if submission.IsLate {
		timeliness = "late"
	}
	observability.SubmissionsTotal().WithLabelValues(timeliness).Inc()

	return utils.SendCreated(c, "submission accepted", submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.submissions.Get(c.UserContext(), principalFromContext(c), id)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) resubmit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionResubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.submissions.Resubmit(c.UserContext(), principalFromContext(c), id, payload)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "submission updated", submission)
}

func (h *SubmissionHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.grading.Grade(c.UserContext(), principalFromContext(c), id, payload)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	observability.GradingsTotal().Inc()

	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *SubmissionHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
