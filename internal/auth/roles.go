package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/correspondence-service/pkg/util/errorutil"
)

// RequireAuthenticated ensures a principal is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireMutator ensures the caller's role may create or update
// correspondence (admin or manager).
func RequireMutator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.User.Role.CanMutate() {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
