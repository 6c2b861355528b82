package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/repository"
)

// SubjectHandler serves the subject catalog.
type SubjectHandler struct {
	Subjects *repository.SubjectRepo
}

func NewSubjectHandler(s *repository.SubjectRepo) *SubjectHandler {
	return &SubjectHandler{Subjects: s}
}

type subjectReq struct {
	Name string `json:"name"`
}

func (h *SubjectHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	subjects, err := h.Subjects.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subjects": subjects})
}

func (h *SubjectHandler) Create(c echo.Context) error {
	var req subjectReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Subjects.Create(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"subject": s})
}

func (h *SubjectHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Subjects.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subject": s})
}

func (h *SubjectHandler) Update(c echo.Context) error {
	var req subjectReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Subjects.Rename(ctx, c.Param("id"), strings.TrimSpace(req.Name))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"subject": s})
}

func (h *SubjectHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Subjects.Delete(ctx, c.Param("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "subject deleted"})
}
