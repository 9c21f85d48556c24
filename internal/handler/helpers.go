package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edunexa/edunexa-api/internal/middleware"
	"github.com/edunexa/edunexa-api/internal/models"
	"github.com/edunexa/edunexa-api/internal/service"
	"github.com/edunexa/edunexa-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// teacherOnly and studentOnly gate routes by role before the service runs its
// own ownership checks.
func teacherOnly() fiber.Handler {
	return middleware.RequireRole(string(models.RoleTeacher))
}

func studentOnly() fiber.Handler {
	return middleware.RequireRole(string(models.RoleStudent))
}

func principalFromContext(c *fiber.Ctx) models.Principal {
	if v := c.Locals(middleware.PrincipalKey); v != nil {
		if principal, ok := v.(models.Principal); ok {
			return principal
		}
	}
	return models.Principal{}
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// sendDomainError maps service sentinel errors onto HTTP statuses. Validation
// failures are 400, permission failures 403, missing entities 404, and domain
// rule violations 409.
func sendDomainError(c *fiber.Ctx, err error) (bool, error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return true, utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	}

	switch {
	case errors.Is(err, service.ErrTeacherRoleRequired),
		errors.Is(err, service.ErrStudentRoleRequired),
		errors.Is(err, service.ErrNotCourseOwner),
		errors.Is(err, service.ErrNotSubmissionOwner),
		errors.Is(err, service.ErrCourseAccessDenied):
		return true, utils.SendError(c, fiber.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrInvalidCourseDates),
		errors.Is(err, service.ErrCourseCodeTaken),
		errors.Is(err, service.ErrCourseFull),
		errors.Is(err, service.ErrEnrollmentClosed),
		errors.Is(err, service.ErrDueDateInPast),
		errors.Is(err, service.ErrInvalidLateDeadline),
		errors.Is(err, service.ErrSubmissionClosed),
		errors.Is(err, service.ErrAttachmentRequired),
		errors.Is(err, service.ErrDuplicateSubmission),
		errors.Is(err, service.ErrNotEnrolled),
		errors.Is(err, service.ErrPointsOutOfRange):
		return true, utils.SendError(c, fiber.StatusConflict, err.Error())
	}

	return false, nil
}
