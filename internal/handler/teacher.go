package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/repository"
)

// TeacherHandler serves teacher profiles, teaching assignments and grading.
type TeacherHandler struct {
	Teachers *repository.TeacherRepo
	Grades   *repository.GradeRepo
}

func NewTeacherHandler(t *repository.TeacherRepo, g *repository.GradeRepo) *TeacherHandler {
	return &TeacherHandler{Teachers: t, Grades: g}
}

type teacherCreateReq struct {
	UserID string `json:"userId"`
}
type assignmentReq struct {
	TeacherID string `json:"teacherId"`
	Subject   string `json:"subject"`
}
type gradeCreateReq struct {
	Subject   string  `json:"subject"`
	StudentID string  `json:"studentId"`
	Grade     float64 `json:"grade"`
}
type gradeDeleteReq struct {
	GradeID string `json:"gradeId"`
}

func (h *TeacherHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	teachers, err := h.Teachers.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"teachers": teachers})
}

// Create registers a teacher profile for a user and promotes their role.
func (h *TeacherHandler) Create(c echo.Context) error {
	var req teacherCreateReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Teachers.Create(ctx, strings.TrimSpace(req.UserID))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"teacher": t})
}

// Get returns a teacher together with the subjects they teach.
func (h *TeacherHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Teachers.GetDetail(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"teacher":  detail.TeacherProfile,
		"subjects": detail.Subjects,
	})
}

// AssignSubject links a teacher to a subject by name.
func (h *TeacherHandler) AssignSubject(c echo.Context) error {
	var req assignmentReq
	if err := c.Bind(&req); err != nil ||
		strings.TrimSpace(req.TeacherID) == "" || strings.TrimSpace(req.Subject) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "teacherId and subject required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Teachers.Assign(ctx, strings.TrimSpace(req.TeacherID), strings.TrimSpace(req.Subject)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "subject assigned"})
}

// UnassignSubject removes a teaching link.
func (h *TeacherHandler) UnassignSubject(c echo.Context) error {
	var req assignmentReq
	if err := c.Bind(&req); err != nil ||
		strings.TrimSpace(req.TeacherID) == "" || strings.TrimSpace(req.Subject) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "teacherId and subject required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Teachers.Unassign(ctx, strings.TrimSpace(req.TeacherID), strings.TrimSpace(req.Subject)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "subject unassigned"})
}

// AddGrade records a grade for a student.  The caller must teach the subject
// unless they are an admin.
func (h *TeacherHandler) AddGrade(c echo.Context) error {
	var req gradeCreateReq
	if err := c.Bind(&req); err != nil ||
		strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.StudentID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject, studentId and grade required"})
	}
	if req.Grade < 0 || req.Grade > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "grade must be between 0 and 100"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	g, err := h.Grades.Create(ctx, currentUserID(c), currentRole(c),
		strings.TrimSpace(req.Subject), strings.TrimSpace(req.StudentID), req.Grade)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"grade": g})
}

// DeleteGrade removes a grade under the same teaching restriction.
func (h *TeacherHandler) DeleteGrade(c echo.Context) error {
	var req gradeDeleteReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.GradeID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "gradeId required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Grades.Delete(ctx, currentUserID(c), currentRole(c), strings.TrimSpace(req.GradeID)); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "grade deleted"})
}
