package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

// BlogRepo stores user-authored posts. Ownership checks live here so that
// edit and delete stay atomic with the read.
type BlogRepo struct{ DB *sql.DB }

func NewBlogRepo(db *sql.DB) *BlogRepo { return &BlogRepo{DB: db} }

const blogColumns = "id, user_id, title, body, image, created_at, updated_at"

func scanBlog(row interface{ Scan(...any) error }) (model.Blog, error) {
	var b model.Blog
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Body, &b.Image, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create inserts a new blog. An identical post (same title, body and author)
// is rejected as a duplicate.
func (r *BlogRepo) Create(ctx context.Context, userID, title, body string, image *string) (model.Blog, error) {
	var dup int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM blogs WHERE user_id=? AND title=? AND body=?",
		userID, title, body).Scan(&dup); err != nil {
		return model.Blog{}, apperr.Unexpected(err.Error())
	}
	if dup > 0 {
		return model.Blog{}, apperr.AlreadyRegistered("this blog has already been created")
	}

	id := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO blogs (id, user_id, title, body, image) VALUES (?,?,?,?,?)",
		id, userID, title, body, image); err != nil {
		return model.Blog{}, apperr.Unexpected(err.Error())
	}
	return r.GetByID(ctx, id)
}

func (r *BlogRepo) GetByID(ctx context.Context, id string) (model.Blog, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+blogColumns+" FROM blogs WHERE id=? LIMIT 1", id)
	b, err := scanBlog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Blog{}, apperr.NotFound("blog not found")
	}
	if err != nil {
		return model.Blog{}, apperr.Unexpected(err.Error())
	}
	return b, nil
}

func (r *BlogRepo) List(ctx context.Context) ([]model.Blog, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+blogColumns+" FROM blogs ORDER BY created_at DESC")
	if err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	blogs := make([]model.Blog, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, apperr.Unexpected(err.Error())
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	return blogs, nil
}

// BlogEdit carries the updatable blog fields. Nil means keep the current
// value.
type BlogEdit struct {
	Title *string
	Body  *string
	Image *string
}

// Update applies the edit if the actor owns the blog.
func (r *BlogRepo) Update(ctx context.Context, actorID, blogID string, edit BlogEdit) (model.Blog, error) {
	current, err := r.GetByID(ctx, blogID)
	if err != nil {
		return model.Blog{}, err
	}
	if current.UserID != actorID {
		return model.Blog{}, apperr.Forbidden("you are not authorised")
	}

	title, body, image := current.Title, current.Body, current.Image
	if edit.Title != nil {
		title = *edit.Title
	}
	if edit.Body != nil {
		body = *edit.Body
	}
	if edit.Image != nil {
		image = edit.Image
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE blogs SET title=?, body=?, image=? WHERE id=?",
		title, body, image, blogID); err != nil {
		return model.Blog{}, apperr.Unexpected(err.Error())
	}
	return r.GetByID(ctx, blogID)
}

// Delete removes the blog if the actor owns it. Comments cascade.
func (r *BlogRepo) Delete(ctx context.Context, actorID, blogID string) error {
	current, err := r.GetByID(ctx, blogID)
	if err != nil {
		return err
	}
	if current.UserID != actorID {
		return apperr.Forbidden("you are not authorised")
	}
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM blogs WHERE id=?", blogID); err != nil {
		return apperr.Unexpected(err.Error())
	}
	return nil
}
