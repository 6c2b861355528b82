package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/repository"
)

// StudentHandler serves student profiles, enrollment and grade viewing.
type StudentHandler struct {
	Students *repository.StudentRepo
}

func NewStudentHandler(s *repository.StudentRepo) *StudentHandler {
	return &StudentHandler{Students: s}
}

type studentCreateReq struct {
	UserID string `json:"userId"`
}
type enrollmentReq struct {
	Subject string `json:"subject"`
}

func (h *StudentHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	students, err := h.Students.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"students": students})
}

// Create registers a student profile for a user and promotes their role.
func (h *StudentHandler) Create(c echo.Context) error {
	var req studentCreateReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Students.Create(ctx, strings.TrimSpace(req.UserID))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"student": s})
}

// Get returns a student together with enrolled subjects and grades.
func (h *StudentHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Students.GetDetail(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"student":  detail.StudentProfile,
		"subjects": detail.Subjects,
		"grades":   detail.Grades,
	})
}

// Enroll adds the calling student to a subject by name.
func (h *StudentHandler) Enroll(c echo.Context) error {
	var req enrollmentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Subject) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Students.Enroll(ctx, currentUserID(c), strings.TrimSpace(req.Subject)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "enrolled"})
}

// Unenroll removes the calling student from a subject by name.
func (h *StudentHandler) Unenroll(c echo.Context) error {
	var req enrollmentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Subject) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Students.Unenroll(ctx, currentUserID(c), strings.TrimSpace(req.Subject)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "unenrolled"})
}

// Grades returns the calling student's own grades.
func (h *StudentHandler) Grades(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	grades, err := h.Students.Grades(ctx, currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"grades": grades})
}
