package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edunexa/edunexa-api/internal/dto"
	"github.com/edunexa/edunexa-api/internal/observability"
	"github.com/edunexa/edunexa-api/internal/service"
	"github.com/edunexa/edunexa-api/internal/utils"
)

// CourseHandler wires course registry and enrollment HTTP routes.
type CourseHandler struct {
	courses     service.CourseService
	enrollments service.EnrollmentService
	logger      zerolog.Logger
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(courses service.CourseService, enrollments service.EnrollmentService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses:     courses,
		enrollments: enrollments,
		logger:      logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register attaches course endpoints to the router group. "/enrolled" is
// registered before the "/:id" routes so the static segment wins.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", teacherOnly(), h.create)
	router.Get("/enrolled", studentOnly(), h.myEnrollments)
	router.Get("/:id", h.get)
	router.Patch("/:id", teacherOnly(), h.update)
	router.Delete("/:id", teacherOnly(), h.delete)
	router.Post("/:id/enroll", studentOnly(), h.enroll)
	router.Delete("/:id/enroll", studentOnly(), h.unenroll)
	router.Get("/:id/enrollment", studentOnly(), h.myEnrollment)
}

func (h *CourseHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.CourseListRequest{
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.courses.List(c.UserContext(), principalFromContext(c), req)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendList(c, "courses retrieved", result.Courses, utils.ListMeta{
		Total:    result.Total,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Create(c.UserContext(), principalFromContext(c), payload)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendCreated(c, "course created", course)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.courses.Get(c.UserContext(), id)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Update(c.UserContext(), principalFromContext(c), id, payload)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "course updated", course)
}

func (h *CourseHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.courses.Delete(c.UserContext(), principalFromContext(c), id); err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "course deleted", fiber.Map{"id": id})
}

func (h *CourseHandler) enroll(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.enrollments.Enroll(c.UserContext(), principalFromContext(c), id)
	if err != nil {
		observability.EnrollmentsTotal().WithLabelValues("rejected").Inc()
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	outcome := "created"
	if enrollment.Reactivated {
		outcome = "reactivated"
	}
	observability.EnrollmentsTotal().WithLabelValues(outcome).Inc()

	if enrollment.Reactivated {
		return utils.SendSuccess(c, "enrollment reactivated", enrollment)
	}
	return utils.SendCreated(c, "enrolled", enrollment)
}

func (h *CourseHandler) unenroll(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.enrollments.Unenroll(c.UserContext(), principalFromContext(c), id); err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "enrollment deactivated", fiber.Map{"course_id": id})
}

func (h *CourseHandler) myEnrollments(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"

	enrollments, err := h.enrollments.ListForStudent(c.UserContext(), principalFromContext(c), activeOnly)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "enrollments retrieved", enrollments)
}

func (h *CourseHandler) myEnrollment(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	enrollment, err := h.enrollments.GetLedgerEntry(c.UserContext(), principalFromContext(c).StudentID, id)
	if err != nil {
		if handled, resp := sendDomainError(c, err); handled {
			return resp
		}
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "enrollment retrieved", dto.NewEnrollmentResponse(enrollment, false))
}

func (h *CourseHandler) internalError(c *fiber.Ctx, err error) error {
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
