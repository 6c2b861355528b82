package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gachenge/school-portal/internal/config"
	"github.com/Gachenge/school-portal/internal/model"
	"github.com/Gachenge/school-portal/internal/queue"
)

// postJSON runs a handler against a JSON body and returns the recorder.
// Validation failures short-circuit before any repository call, so these
// tests need no backing services.
func postJSON(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func testAuthHandler() *AuthHandler {
	return NewAuthHandler(config.Config{JWTSecret: "secret", AccessTTLMin: 15}, nil, nil, nil)
}

func TestSignUpValidation(t *testing.T) {
	h := testAuthHandler()

	cases := []struct {
		name string
		body string
	}{
		{"missing username", `{"email":"a@b.com","password":"longenough"}`},
		{"missing email", `{"username":"alice","password":"longenough"}`},
		{"missing password", `{"username":"alice","email":"a@b.com"}`},
		{"malformed email", `{"username":"alice","email":"not-an-email","password":"longenough"}`},
		{"short password", `{"username":"alice","email":"a@b.com","password":"short"}`},
		{"missing confirmation", `{"username":"alice","email":"a@b.com","password":"longenough"}`},
		{"mismatched confirmation", `{"username":"alice","email":"a@b.com","password":"longenough","confirmPassword":"different"}`},
		{"not json", `title=x`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, h.SignUp, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginRequiresExactlyOneSelector(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.Login, `{"password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.Login, `{"username":"alice","email":"a@b.com","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRequiresPassword(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.Login, `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRequiresToken(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.Refresh, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.Refresh, `{"token":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutRequiresToken(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.Logout, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPasswordRequiresSelector(t *testing.T) {
	h := testAuthHandler()

	rec := postJSON(t, h.ForgotPassword, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// recordingMailer captures published events instead of dialing the broker.
type recordingMailer struct {
	events []queue.EmailQueuedEvent
}

func (m *recordingMailer) PublishEmail(_ context.Context, ev queue.EmailQueuedEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func TestWelcomeEmailQueuedAfterVerification(t *testing.T) {
	rec := &recordingMailer{}
	h := NewAuthHandler(config.Config{JWTSecret: "secret"}, nil, nil, rec)

	u := model.User{ID: "u1", Username: "alice", Email: "a@b.com", IsActive: true}
	h.sendWelcomeEmail(context.Background(), u)

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, queue.EmailKindWelcome, ev.Kind)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "a@b.com", ev.To)
	assert.Contains(t, ev.Body, "alice")
}

func TestVerifyEmailRejectsGarbageToken(t *testing.T) {
	h := testAuthHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("token")
	c.SetParamValues("not-a-jwt")

	require.NoError(t, h.VerifyEmail(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
