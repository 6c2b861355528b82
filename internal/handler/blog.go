package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/repository"
)

// BlogHandler serves the blog endpoints.  Ownership rules are enforced in
// the repository so they stay atomic with the reads.
type BlogHandler struct {
	Blogs *repository.BlogRepo
}

func NewBlogHandler(b *repository.BlogRepo) *BlogHandler {
	return &BlogHandler{Blogs: b}
}

type blogCreateReq struct {
	Title string  `json:"title"`
	Body  string  `json:"body"`
	Image *string `json:"image"`
}
type blogEditReq struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
	Image *string `json:"image"`
}

func (h *BlogHandler) Create(c echo.Context) error {
	var req blogCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and body required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Blogs.Create(ctx, currentUserID(c), req.Title, req.Body, req.Image)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"blog": b})
}

func (h *BlogHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	blogs, err := h.Blogs.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blogs": blogs})
}

func (h *BlogHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Blogs.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blog": b})
}

func (h *BlogHandler) Update(c echo.Context) error {
	var req blogEditReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == nil && req.Body == nil && req.Image == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Blogs.Update(ctx, currentUserID(c), c.Param("id"), repository.BlogEdit{
		Title: req.Title,
		Body:  req.Body,
		Image: req.Image,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"blog": b})
}

func (h *BlogHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Blogs.Delete(ctx, currentUserID(c), c.Param("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "blog deleted"})
}
