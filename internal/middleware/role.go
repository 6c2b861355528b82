package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/authz"
)

// RequireOp returns a middleware that checks the authenticated user's role
// against the allow-list for the named operation.  It assumes CookieAuth has
// already stored the role in the context; a missing or disallowed role is
// rejected with 403.
func RequireOp(op string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !authz.Allowed(op, role) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
