package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/authz"
	"github.com/Gachenge/school-portal/internal/model"
	"github.com/Gachenge/school-portal/internal/utils"
)

const testSecret = "test-secret"

type stubUsers struct {
	users map[string]model.User
}

func (s *stubUsers) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func invokeAuth(t *testing.T, users UserSource, cookie *http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := CookieAuth(testSecret, users)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestCookieAuthValidToken(t *testing.T) {
	users := &stubUsers{users: map[string]model.User{
		"u1": {ID: "u1", Role: model.RoleAdmin},
	}}
	tok, err := utils.NewAccessToken(testSecret, "u1", model.RoleUser, 15)
	require.NoError(t, err)

	rec, c := invokeAuth(t, users, &http.Cookie{Name: "access_token", Value: tok.Token})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", c.Get("user_id"))
	// The role comes from the user record, not the token claim.
	assert.Equal(t, model.RoleAdmin, c.Get("role"))
}

func TestCookieAuthMissingCookie(t *testing.T) {
	rec, _ := invokeAuth(t, &stubUsers{users: map[string]model.User{}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCookieAuthGarbageToken(t *testing.T) {
	rec, _ := invokeAuth(t, &stubUsers{users: map[string]model.User{}},
		&http.Cookie{Name: "access_token", Value: "not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCookieAuthUnknownUser(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "ghost", model.RoleUser, 15)
	require.NoError(t, err)

	rec, _ := invokeAuth(t, &stubUsers{users: map[string]model.User{}},
		&http.Cookie{Name: "access_token", Value: tok.Token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireOpAllowsAndDenies(t *testing.T) {
	e := echo.New()

	run := func(role string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("role", role)
		h := RequireOp(authz.OpUserList)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, run(model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, run(model.RoleUser))
	assert.Equal(t, http.StatusForbidden, run(""))
}
