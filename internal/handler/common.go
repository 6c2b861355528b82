// Package handler contains the HTTP endpoints.  Handlers bind and validate
// request bodies, delegate to the repositories, and translate failures to
// HTTP responses through the apperr mapping.
package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/apperr"
)

// reqCtx derives a bounded context for database work from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// currentUserID returns the authenticated user id stored by CookieAuth.
func currentUserID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

// currentRole returns the authenticated user's role stored by CookieAuth.
func currentRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// respondErr maps any error to its HTTP status and public message.
func respondErr(c echo.Context, err error) error {
	return c.JSON(apperr.Status(err), echo.Map{"error": apperr.PublicMessage(err)})
}
