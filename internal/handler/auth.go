package handler

import (
	"context"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/config"
	"github.com/Gachenge/school-portal/internal/model"
	"github.com/Gachenge/school-portal/internal/queue"
	"github.com/Gachenge/school-portal/internal/repository"
	"github.com/Gachenge/school-portal/internal/service"
	"github.com/Gachenge/school-portal/internal/utils"
)

// AuthHandler bundles dependencies for the oauth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRegistry
	Mailer service.Mailer
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRegistry, m service.Mailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Mailer: m}
}

// ----- DTOs -----

type signUpReq struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}
type loginReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	Token string `json:"token"`
}
type logoutReq struct {
	RefreshToken string `json:"refreshToken"`
}
type forgotPasswordReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type userPart struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	IsActive bool    `json:"isActive"`
	Phone    *string `json:"phone,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
		Phone:    u.Phone,
		Avatar:   u.Avatar,
	}
}

// setAccessCookie attaches the access token as an HTTP-only cookie on the
// response.  Secure is set only in prod so local development over plain HTTP
// keeps working.
func (h *AuthHandler) setAccessCookie(c echo.Context, tok utils.AccessToken) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    tok.Token,
		Expires:  tok.Exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAccessCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

// issueSession mints the access and refresh tokens for a user, registers the
// refresh token, and sets the cookie.  Returns the refresh token raw string.
func (h *AuthHandler) issueSession(c echo.Context, u model.User) (string, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return "", apperr.Unexpected(err.Error())
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return "", apperr.Unexpected(err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ttl := time.Duration(h.Cfg.RefreshTTLDays) * 24 * time.Hour
	if err := h.Tokens.Issue(ctx, refresh.Raw, u.ID, ttl); err != nil {
		return "", err
	}
	h.setAccessCookie(c, access)
	return refresh.Raw, nil
}

// SignUp creates an account, emails a verification link, and signs the user
// in immediately.  The account stays inactive until the link is followed.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password required"})
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	if req.ConfirmPassword != req.Password {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passwords do not match"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return respondErr(c, err)
	}

	refreshRaw, err := h.issueSession(c, u)
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.sendVerificationEmail(c, u, queue.EmailKindVerify); err != nil {
		return respondErr(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":      true,
		"id":           u.ID,
		"email":        u.Email,
		"refreshToken": refreshRaw,
	})
}

// Login authenticates by username or email plus password.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if (req.Username == "") == (req.Email == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide exactly one of username or email"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		u   model.User
		err error
	)
	if req.Username != "" {
		u, err = h.Users.GetByUsername(ctx, req.Username)
	} else {
		u, err = h.Users.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		return respondErr(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondErr(c, apperr.WrongPassword())
	}

	refreshRaw, err := h.issueSession(c, u)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"id":           u.ID,
		"email":        u.Email,
		"refreshToken": refreshRaw,
	})
}

// Refresh exchanges a live refresh token for a fresh access cookie.  The
// refresh token itself is not rotated; it stays valid until its TTL lapses
// or the user logs out.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.Lookup(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return respondErr(c, err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return respondErr(c, err)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondErr(c, apperr.Unexpected(err.Error()))
	}
	h.setAccessCookie(c, access)

	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// Logout revokes the refresh token and clears the access cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Tokens.Lookup(ctx, raw)
	if err != nil {
		return respondErr(c, err)
	}
	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		return respondErr(c, err)
	}
	if err := h.Tokens.Revoke(ctx, raw); err != nil {
		return respondErr(c, err)
	}

	h.clearAccessCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logout successful"})
}

// VerifyEmail consumes an emailed token and activates the account.  Both the
// signup verification and the password-reset email point here; consuming
// either kind activates the account, and re-consuming is harmless.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.Param("token")
	userID, _, err := utils.ParseSigned(h.Cfg.JWTSecret, token)
	if err != nil {
		return respondErr(c, apperr.TokenVerification())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.Activate(ctx, userID)
	if err != nil {
		return respondErr(c, err)
	}
	h.sendWelcomeEmail(c.Request().Context(), u)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "token successfully received and processed"})
}

// ForgotPassword accepts a username or email and queues a reset email.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	selector := strings.TrimSpace(req.Username)
	if selector == "" {
		selector = strings.TrimSpace(req.Email)
	}
	if selector == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username or email is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByUsernameOrEmail(ctx, selector)
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.sendVerificationEmail(c, u, queue.EmailKindReset); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "password reset initiated successfully"})
}

// sendVerificationEmail queues a tokenized email link for the user.  Both
// kinds share the token format and the consumption endpoint.
func (h *AuthHandler) sendVerificationEmail(c echo.Context, u model.User, kind string) error {
	token, err := utils.NewVerificationToken(h.Cfg.JWTSecret, u.ID, h.Cfg.VerifyTTLDays)
	if err != nil {
		return apperr.Unexpected(err.Error())
	}
	link := h.Cfg.BaseURL + "/api/oauth/verify_email/" + token

	subject := "Verify your email address"
	body := "Follow this link to verify your email address: " + link
	if kind == queue.EmailKindReset {
		subject = "Password reset"
		body = "Follow this link to reset your password: " + link
	}

	ev := queue.EmailQueuedEvent{
		Kind:    kind,
		UserID:  u.ID,
		To:      u.Email,
		Subject: subject,
		Body:    body,
	}
	if err := h.Mailer.PublishEmail(c.Request().Context(), ev); err != nil {
		log.Printf("auth: queue %s email for %s failed: %v", kind, u.ID, err)
		return apperr.Unexpected(err.Error())
	}
	return nil
}

// sendWelcomeEmail queues the post-verification welcome message.  Delivery is
// best effort; the account is already active by the time this runs.
func (h *AuthHandler) sendWelcomeEmail(ctx context.Context, u model.User) {
	ev := queue.EmailQueuedEvent{
		Kind:    queue.EmailKindWelcome,
		UserID:  u.ID,
		To:      u.Email,
		Subject: "Welcome to the portal",
		Body:    "Hi " + u.Username + ", your email address is verified and your account is active.",
	}
	if err := h.Mailer.PublishEmail(ctx, ev); err != nil {
		log.Printf("auth: queue welcome email for %s failed: %v", u.ID, err)
	}
}
