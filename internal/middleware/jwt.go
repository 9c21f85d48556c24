package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/edunexa/edunexa-api/internal/models"
	"github.com/edunexa/edunexa-api/internal/utils"
)

// PrincipalKey is the fiber.Ctx locals key holding the authenticated principal.
const PrincipalKey = "principal"

// JWTProtected returns a middleware that validates JWT bearer tokens and binds
// the authenticated principal to the request. Tokens carry the user id, the
// role, and the role-specific profile id (teacher_id or student_id).
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token claims")
		}

		principal := principalFromClaims(claims)
		if principal.UserID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token subject")
		}

		c.Locals("user_id", principal.UserID)
		c.Locals("user_role", string(principal.Role))
		c.Locals(PrincipalKey, principal)

		return c.Next()
	}
}

func principalFromClaims(claims jwt.MapClaims) models.Principal {
	principal := models.Principal{}

	for _, key := range []string{"sub", "user_id", "id"} {
		if value, ok := claims[key]; ok {
			if id, err := normalizeID(value); err == nil {
				principal.UserID = id
				break
			}
		}
	}

	if value, ok := claims["role"]; ok {
		if role, isString := value.(string); isString {
			principal.Role = models.Role(strings.ToLower(strings.TrimSpace(role)))
		}
	}

	if value, ok := claims["teacher_id"]; ok {
		if id, err := normalizeID(value); err == nil {
			principal.TeacherID = id
		}
	}
	if value, ok := claims["student_id"]; ok {
		if id, err := normalizeID(value); err == nil {
			principal.StudentID = id
		}
	}

	return principal
}

func normalizeID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid identifier")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid identifier")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported identifier type")
	}
}
