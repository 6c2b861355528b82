package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/repository"
)

// CommentHandler serves comments under blogs.  The :id parameter names the
// blog for create/list and the comment for get/edit/delete.
type CommentHandler struct {
	Comments *repository.CommentRepo
}

func NewCommentHandler(cm *repository.CommentRepo) *CommentHandler {
	return &CommentHandler{Comments: cm}
}

type commentReq struct {
	Comment string  `json:"comment"`
	Image   *string `json:"image"`
}

// Create adds a comment under the blog named in the path.
func (h *CommentHandler) Create(c echo.Context) error {
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Comment) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.Create(ctx, currentUserID(c), c.Param("id"), req.Comment, req.Image)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"comment": cm})
}

// ListByBlog returns the comments under the blog named in the path.
func (h *CommentHandler) ListByBlog(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	comments, err := h.Comments.ListByBlog(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

func (h *CommentHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comment": cm})
}

func (h *CommentHandler) Update(c echo.Context) error {
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Comment) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "comment required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cm, err := h.Comments.Update(ctx, currentUserID(c), c.Param("id"), req.Comment, req.Image)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comment": cm})
}

func (h *CommentHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Comments.Delete(ctx, currentUserID(c), currentRole(c), c.Param("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "comment deleted"})
}
