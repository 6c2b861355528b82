package handler

import (
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/config"
	"github.com/Gachenge/school-portal/internal/model"
	"github.com/Gachenge/school-portal/internal/queue"
	"github.com/Gachenge/school-portal/internal/repository"
	"github.com/Gachenge/school-portal/internal/service"
	"github.com/Gachenge/school-portal/internal/utils"
)

// UserHandler serves the user directory endpoints.
type UserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Mailer service.Mailer
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo, m service.Mailer) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Mailer: m}
}

type userEditReq struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Avatar   *string `json:"avatar"`
}

// List returns every user.  Admin only.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// Get returns one user by id.  Admin only.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// Update lets a user edit their own record.  Changing the email deactivates
// the account and re-sends the verification email to the new address.
func (h *UserHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if id != currentUserID(c) {
		return respondErr(c, apperr.Forbidden("you can only edit your own profile"))
	}

	var req userEditReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == nil && req.Email == nil && req.Phone == nil && req.Avatar == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username cannot be empty"})
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(strings.TrimSpace(*req.Email)); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, emailChanged, err := h.Users.Update(ctx, id, repository.UserEdit{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return respondErr(c, err)
	}

	if emailChanged {
		if err := h.sendVerification(c, u); err != nil {
			return respondErr(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// Delete removes a user.  Admin only.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "user deleted"})
}

func (h *UserHandler) sendVerification(c echo.Context, u model.User) error {
	token, err := utils.NewVerificationToken(h.Cfg.JWTSecret, u.ID, h.Cfg.VerifyTTLDays)
	if err != nil {
		return apperr.Unexpected(err.Error())
	}
	link := h.Cfg.BaseURL + "/api/oauth/verify_email/" + token
	ev := queue.EmailQueuedEvent{
		Kind:    queue.EmailKindVerify,
		UserID:  u.ID,
		To:      u.Email,
		Subject: "Verify your email address",
		Body:    "Follow this link to verify your new email address: " + link,
	}
	if err := h.Mailer.PublishEmail(c.Request().Context(), ev); err != nil {
		log.Printf("users: queue verification email for %s failed: %v", u.ID, err)
		return apperr.Unexpected(err.Error())
	}
	return nil
}
