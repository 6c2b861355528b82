package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

// CommentRepo stores comments under blogs. Edits are owner-only; deletes
// are allowed for the owner or an admin.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

const commentColumns = "id, blog_id, user_id, comment, image, created_at, updated_at"

func scanComment(row interface{ Scan(...any) error }) (model.Comment, error) {
	var c model.Comment
	err := row.Scan(&c.ID, &c.BlogID, &c.UserID, &c.Comment, &c.Image, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create adds a comment under an existing blog.
func (r *CommentRepo) Create(ctx context.Context, userID, blogID, text string, image *string) (model.Comment, error) {
	var blogCount int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM blogs WHERE id=?", blogID).Scan(&blogCount); err != nil {
		return model.Comment{}, apperr.Unexpected(err.Error())
	}
	if blogCount == 0 {
		return model.Comment{}, apperr.NotFound("blog not found")
	}

	id := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (id, blog_id, user_id, comment, image) VALUES (?,?,?,?,?)",
		id, blogID, userID, text, image); err != nil {
		return model.Comment{}, apperr.Unexpected(err.Error())
	}
	return r.GetByID(ctx, id)
}

func (r *CommentRepo) GetByID(ctx context.Context, id string) (model.Comment, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE id=? LIMIT 1", id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Comment{}, apperr.NotFound("comment not found")
	}
	if err != nil {
		return model.Comment{}, apperr.Unexpected(err.Error())
	}
	return c, nil
}

// ListByBlog returns the comments under a blog, oldest first.
func (r *CommentRepo) ListByBlog(ctx context.Context, blogID string) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE blog_id=? ORDER BY created_at", blogID)
	if err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	comments := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, apperr.Unexpected(err.Error())
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	return comments, nil
}

// Update rewrites the comment text if the actor owns it.
func (r *CommentRepo) Update(ctx context.Context, actorID, commentID, text string, image *string) (model.Comment, error) {
	current, err := r.GetByID(ctx, commentID)
	if err != nil {
		return model.Comment{}, err
	}
	if current.UserID != actorID {
		return model.Comment{}, apperr.Forbidden("you are not authorised")
	}
	newImage := current.Image
	if image != nil {
		newImage = image
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET comment=?, image=? WHERE id=?",
		text, newImage, commentID); err != nil {
		return model.Comment{}, apperr.Unexpected(err.Error())
	}
	return r.GetByID(ctx, commentID)
}

// Delete removes the comment for its owner or an admin.
func (r *CommentRepo) Delete(ctx context.Context, actorID, actorRole, commentID string) error {
	current, err := r.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if current.UserID != actorID && actorRole != model.RoleAdmin {
		return apperr.Forbidden("you are not authorised")
	}
	if _, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", commentID); err != nil {
		return apperr.Unexpected(err.Error())
	}
	return nil
}
