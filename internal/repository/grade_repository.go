package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

// GradeRepo records subject grades for students. Writes are restricted to
// teachers assigned to the subject; admins may always write.
type GradeRepo struct{ DB *sql.DB }

func NewGradeRepo(db *sql.DB) *GradeRepo { return &GradeRepo{DB: db} }

// Create stores a grade for a student in the named subject. The acting
// teacher must teach the subject unless the actor is an admin.
func (r *GradeRepo) Create(ctx context.Context, actorID, actorRole, subjectName, studentID string, grade float64) (model.SubjectGrade, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.SubjectGrade{}, apperr.Unexpected(err.Error())
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var subjectID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM subjects WHERE name=?", subjectName).Scan(&subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SubjectGrade{}, apperr.NotFound("subject does not exist")
	}
	if err != nil {
		return model.SubjectGrade{}, apperr.Unexpected(err.Error())
	}

	var studentCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM student_profiles WHERE student_id=?", studentID).Scan(&studentCount); err != nil {
		return model.SubjectGrade{}, apperr.Unexpected(err.Error())
	}
	if studentCount == 0 {
		return model.SubjectGrade{}, apperr.NotFound("student does not exist")
	}

	if actorRole != model.RoleAdmin {
		var teaches int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM teacher_subjects WHERE teacher_id=? AND subject_id=?",
			actorID, subjectID).Scan(&teaches); err != nil {
			return model.SubjectGrade{}, apperr.Unexpected(err.Error())
		}
		if teaches == 0 {
			return model.SubjectGrade{}, apperr.Forbidden("you do not teach this subject")
		}
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO subject_grades (id, subject_id, student_id, grade) VALUES (?,?,?,?)",
		id, subjectID, studentID, grade); err != nil {
		return model.SubjectGrade{}, apperr.Unexpected(err.Error())
	}
	if err := tx.Commit(); err != nil {
		return model.SubjectGrade{}, apperr.Unexpected(err.Error())
	}
	committed = true
	return r.get(ctx, id)
}

func (r *GradeRepo) get(ctx context.Context, id string) (model.SubjectGrade, error) {
	var g model.SubjectGrade
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, subject_id, student_id, grade, created_at FROM subject_grades WHERE id=? LIMIT 1", id).
		Scan(&g.ID, &g.SubjectID, &g.StudentID, &g.Grade, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SubjectGrade{}, apperr.NotFound("grade does not exist")
	}
	if err != nil {
		return model.SubjectGrade{}, apperr.Unexpected(err.Error())
	}
	return g, nil
}

// Delete removes a grade. Only a teacher of the grade's subject or an admin
// may delete it.
func (r *GradeRepo) Delete(ctx context.Context, actorID, actorRole, gradeID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Unexpected(err.Error())
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var subjectID string
	err = tx.QueryRowContext(ctx,
		"SELECT subject_id FROM subject_grades WHERE id=? FOR UPDATE", gradeID).Scan(&subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("grade does not exist")
	}
	if err != nil {
		return apperr.Unexpected(err.Error())
	}

	if actorRole != model.RoleAdmin {
		var teaches int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM teacher_subjects WHERE teacher_id=? AND subject_id=?",
			actorID, subjectID).Scan(&teaches); err != nil {
			return apperr.Unexpected(err.Error())
		}
		if teaches == 0 {
			return apperr.Forbidden("you do not teach this subject")
		}
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM subject_grades WHERE id=?", gradeID); err != nil {
		return apperr.Unexpected(err.Error())
	}
	if err := tx.Commit(); err != nil {
		return apperr.Unexpected(err.Error())
	}
	committed = true
	return nil
}
