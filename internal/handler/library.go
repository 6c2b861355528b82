package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/config"
	"github.com/Gachenge/school-portal/internal/model"
	"github.com/Gachenge/school-portal/internal/repository"
)

// LibraryHandler serves the catalog, membership and lending endpoints.
type LibraryHandler struct {
	Cfg     config.Config
	Books   *repository.BookRepo
	Members *repository.MemberRepo
	Loans   *repository.LoanRepo
}

func NewLibraryHandler(cfg config.Config, b *repository.BookRepo, m *repository.MemberRepo, l *repository.LoanRepo) *LibraryHandler {
	return &LibraryHandler{Cfg: cfg, Books: b, Members: m, Loans: l}
}

// ----- DTOs -----

type bookReq struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Copies uint32 `json:"copies"`
}
type memberReq struct {
	UserID string `json:"userId"`
}
type loanReq struct {
	BookID string `json:"bookId"`
}

type bookPart struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Copies uint32 `json:"copies"`
}

func toBookPart(b model.Book) bookPart {
	return bookPart{ID: b.ID, Title: b.Title, Author: b.Author, Copies: b.Copies}
}

type loanPart struct {
	ID       string    `json:"id"`
	MemberID string    `json:"memberId"`
	BookID   string    `json:"bookId"`
	DueDate  time.Time `json:"dueDate"`
}

func toLoanPart(rec model.BorrowRecord) loanPart {
	return loanPart{ID: rec.ID, MemberID: rec.MemberID, BookID: rec.BookID, DueDate: rec.DueDate}
}

// requireMember gates catalog reads for callers who are not library staff.
func (h *LibraryHandler) requireMember(c echo.Context) error {
	role := currentRole(c)
	if role == model.RoleAdmin || role == model.RoleLibrarian {
		return nil
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	ok, err := h.Members.Exists(ctx, currentUserID(c))
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("you are not a member")
	}
	return nil
}

// ----- books -----

func (h *LibraryHandler) ListBooks(c echo.Context) error {
	if err := h.requireMember(c); err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	books, err := h.Books.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]bookPart, 0, len(books))
	for _, b := range books {
		out = append(out, toBookPart(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"books": out})
}

func (h *LibraryHandler) GetBook(c echo.Context) error {
	if err := h.requireMember(c); err != nil {
		return respondErr(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Books.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"book": toBookPart(b)})
}

func (h *LibraryHandler) CreateBook(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if req.Title == "" || req.Author == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and author required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Books.Create(ctx, req.Title, req.Author, req.Copies)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"book": toBookPart(b)})
}

func (h *LibraryHandler) UpdateBook(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if req.Title == "" || req.Author == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and author required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	b, err := h.Books.Update(ctx, c.Param("id"), req.Title, req.Author, req.Copies)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"book": toBookPart(b)})
}

func (h *LibraryHandler) DeleteBook(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Books.Delete(ctx, c.Param("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "book deleted"})
}

// ----- members -----

func (h *LibraryHandler) ListMembers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	members, err := h.Members.List(ctx)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}

func (h *LibraryHandler) CreateMember(c echo.Context) error {
	var req memberReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := h.Members.Create(ctx, strings.TrimSpace(req.UserID))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"member": m})
}

// GetMember returns a member together with their borrowed and overdue books.
func (h *LibraryHandler) GetMember(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Members.GetDetail(ctx, c.Param("id"))
	if err != nil {
		return respondErr(c, err)
	}
	borrowed := make([]loanPart, 0, len(detail.BorrowedBooks))
	for _, rec := range detail.BorrowedBooks {
		borrowed = append(borrowed, toLoanPart(rec))
	}
	overdue := make([]loanPart, 0, len(detail.OverdueBooks))
	for _, rec := range detail.OverdueBooks {
		overdue = append(overdue, toLoanPart(rec))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"member":        detail.MemberProfile,
		"borrowedBooks": borrowed,
		"overdueBooks":  overdue,
	})
}

func (h *LibraryHandler) DeleteMember(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Members.Delete(ctx, c.Param("id")); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "member deleted"})
}

// ----- lending -----

// Borrow lends a book to the calling member.  The due date is set by config.
func (h *LibraryHandler) Borrow(c echo.Context) error {
	var req loanReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.BookID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookId required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rec, err := h.Loans.ApplyBorrow(ctx, strings.TrimSpace(req.BookID), currentUserID(c), h.Cfg.LoanDays)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"record": toLoanPart(rec)})
}

// Return gives a borrowed book back and frees a copy.
func (h *LibraryHandler) Return(c echo.Context) error {
	var req loanReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.BookID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookId required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rec, err := h.Loans.ApplyReturn(ctx, strings.TrimSpace(req.BookID), currentUserID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "returned": toLoanPart(rec)})
}
