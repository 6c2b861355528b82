package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

// BookRepo provides CRUD for the catalog.  Copy-count changes that belong
// to lending live in LoanRepo; Update here is the librarian's stock edit.
type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

const bookColumns = "id,title,author,copies,created_at,updated_at"

// Create inserts a catalog entry.  A duplicate (title, author) pair fails
// with BookExists.
func (r *BookRepo) Create(ctx context.Context, title, author string, copies uint32) (model.Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	var exists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM books WHERE title=? AND author=?", title, author).Scan(&exists); err != nil {
		return model.Book{}, apperr.Unexpected(err.Error())
	}
	if exists > 0 {
		return model.Book{}, apperr.BookExists()
	}

	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO books (id, title, author, copies) VALUES (?,?,?,?)",
		id, title, author, copies)
	if err != nil {
		if isDuplicate(err) {
			return model.Book{}, apperr.BookExists()
		}
		return model.Book{}, apperr.Unexpected(err.Error())
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a book by id.
func (r *BookRepo) GetByID(ctx context.Context, id string) (model.Book, error) {
	var b model.Book
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+bookColumns+" FROM books WHERE id=? LIMIT 1", id).
		Scan(&b.ID, &b.Title, &b.Author, &b.Copies, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Book{}, apperr.NotFound("book not found")
	}
	if err != nil {
		return model.Book{}, apperr.Unexpected(err.Error())
	}
	return b, nil
}

// List returns the whole catalog ordered by title.
func (r *BookRepo) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+bookColumns+" FROM books ORDER BY title, author")
	if err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Copies, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, apperr.Unexpected(err.Error())
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	return books, nil
}

// Update overwrites title, author and copies of an existing book.
func (r *BookRepo) Update(ctx context.Context, id, title, author string, copies uint32) (model.Book, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Book{}, err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE books SET title=?, author=?, copies=? WHERE id=?",
		strings.TrimSpace(title), strings.TrimSpace(author), copies, id)
	if err != nil {
		if isDuplicate(err) {
			return model.Book{}, apperr.BookExists()
		}
		return model.Book{}, apperr.Unexpected(err.Error())
	}
	return r.GetByID(ctx, id)
}

// Delete removes a book; active borrow records for it cascade.
func (r *BookRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM books WHERE id=?", id)
	if err != nil {
		return apperr.Unexpected(err.Error())
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("book not found")
	}
	return nil
}
