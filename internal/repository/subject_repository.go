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

// SubjectRepo provides CRUD for subjects.  Names are unique; enrollment and
// teaching links live in the join tables managed by the student and teacher
// repositories.
type SubjectRepo struct{ DB *sql.DB }

func NewSubjectRepo(db *sql.DB) *SubjectRepo { return &SubjectRepo{DB: db} }

// Create inserts a subject with a unique name.
func (r *SubjectRepo) Create(ctx context.Context, name string) (model.Subject, error) {
	name = strings.TrimSpace(name)
	var exists int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subjects WHERE name=?", name).Scan(&exists); err != nil {
		return model.Subject{}, apperr.Unexpected(err.Error())
	}
	if exists > 0 {
		return model.Subject{}, apperr.AlreadyRegistered("subject is already registered")
	}
	id := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO subjects (id, name) VALUES (?,?)", id, name); err != nil {
		if isDuplicate(err) {
			return model.Subject{}, apperr.AlreadyRegistered("subject is already registered")
		}
		return model.Subject{}, apperr.Unexpected(err.Error())
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a subject by id.
func (r *SubjectRepo) GetByID(ctx context.Context, id string) (model.Subject, error) {
	var s model.Subject
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM subjects WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.Name, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subject{}, apperr.NotFound("subject not found")
	}
	if err != nil {
		return model.Subject{}, apperr.Unexpected(err.Error())
	}
	return s, nil
}

// List returns all subjects ordered by name.
func (r *SubjectRepo) List(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, created_at FROM subjects ORDER BY name")
	if err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	subjects := make([]model.Subject, 0)
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, apperr.Unexpected(err.Error())
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	return subjects, nil
}

// Rename changes the subject's unique name.
func (r *SubjectRepo) Rename(ctx context.Context, id, name string) (model.Subject, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return model.Subject{}, err
	}
	if _, err := r.DB.ExecContext(ctx,
		"UPDATE subjects SET name=? WHERE id=?", strings.TrimSpace(name), id); err != nil {
		if isDuplicate(err) {
			return model.Subject{}, apperr.AlreadyRegistered("subject is already registered")
		}
		return model.Subject{}, apperr.Unexpected(err.Error())
	}
	return r.GetByID(ctx, id)
}

// Delete removes a subject; enrollment, teaching and grade rows cascade.
func (r *SubjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM subjects WHERE id=?", id)
	if err != nil {
		return apperr.Unexpected(err.Error())
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("subject not found")
	}
	return nil
}
