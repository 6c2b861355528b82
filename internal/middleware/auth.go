package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/model"
	"github.com/Gachenge/school-portal/internal/utils"
)

// UserSource loads the authenticated user so the role in the context always
// reflects the database, not a stale token claim.
type UserSource interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

// CookieAuth returns an Echo middleware that validates the access token
// cookie and injects the user's id and current role into the request
// context under "user_id" and "role".  Protected routes must be wrapped by
// this middleware before any role check runs.
func CookieAuth(secret string, users UserSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie("access_token")
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user is not signed in"})
			}
			userID, _, err := utils.ParseSigned(secret, cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user is not signed in"})
			}
			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
			}
			c.Set("user_id", user.ID)
			c.Set("role", user.Role)
			return next(c)
		}
	}
}
