package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

// TeacherRepo manages teacher profiles and their teaching assignments.
type TeacherRepo struct{ DB *sql.DB }

func NewTeacherRepo(db *sql.DB) *TeacherRepo { return &TeacherRepo{DB: db} }

// TeacherDetail is a teacher profile together with the subjects taught.
type TeacherDetail struct {
	model.TeacherProfile
	Subjects []model.Subject
}

// Create registers a teacher profile for an existing user and promotes the
// user's role to TEACHER, both in one transaction.
func (r *TeacherRepo) Create(ctx context.Context, userID string) (model.TeacherProfile, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.TeacherProfile{}, apperr.Unexpected(err.Error())
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var profileCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM teacher_profiles WHERE teacher_id=?", userID).Scan(&profileCount); err != nil {
		return model.TeacherProfile{}, apperr.Unexpected(err.Error())
	}
	if profileCount > 0 {
		return model.TeacherProfile{}, apperr.AlreadyRegistered("teacher is already registered")
	}
	var userCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE id=?", userID).Scan(&userCount); err != nil {
		return model.TeacherProfile{}, apperr.Unexpected(err.Error())
	}
	if userCount == 0 {
		return model.TeacherProfile{}, apperr.NotFound("user not found")
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO teacher_profiles (teacher_id) VALUES (?)", userID); err != nil {
		return model.TeacherProfile{}, apperr.Unexpected(err.Error())
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=?", model.RoleTeacher, userID); err != nil {
		return model.TeacherProfile{}, apperr.Unexpected(err.Error())
	}
	if err := tx.Commit(); err != nil {
		return model.TeacherProfile{}, apperr.Unexpected(err.Error())
	}
	committed = true
	return r.get(ctx, userID)
}

func (r *TeacherRepo) get(ctx context.Context, teacherID string) (model.TeacherProfile, error) {
	var p model.TeacherProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT teacher_id, created_at FROM teacher_profiles WHERE teacher_id=? LIMIT 1", teacherID).
		Scan(&p.TeacherID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TeacherProfile{}, apperr.NotFound("teacher does not exist")
	}
	if err != nil {
		return model.TeacherProfile{}, apperr.Unexpected(err.Error())
	}
	return p, nil
}

// GetDetail loads a teacher with the subjects they teach.
func (r *TeacherRepo) GetDetail(ctx context.Context, teacherID string) (TeacherDetail, error) {
	profile, err := r.get(ctx, teacherID)
	if err != nil {
		return TeacherDetail{}, err
	}
	detail := TeacherDetail{TeacherProfile: profile, Subjects: make([]model.Subject, 0)}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT s.id, s.name, s.created_at FROM subjects s
		 JOIN teacher_subjects ts ON ts.subject_id = s.id
		 WHERE ts.teacher_id=? ORDER BY s.name`, teacherID)
	if err != nil {
		return TeacherDetail{}, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return TeacherDetail{}, apperr.Unexpected(err.Error())
		}
		detail.Subjects = append(detail.Subjects, s)
	}
	if err := rows.Err(); err != nil {
		return TeacherDetail{}, apperr.Unexpected(err.Error())
	}
	return detail, nil
}

// List returns every teacher profile.
func (r *TeacherRepo) List(ctx context.Context) ([]model.TeacherProfile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT teacher_id, created_at FROM teacher_profiles ORDER BY created_at")
	if err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	teachers := make([]model.TeacherProfile, 0)
	for rows.Next() {
		var p model.TeacherProfile
		if err := rows.Scan(&p.TeacherID, &p.CreatedAt); err != nil {
			return nil, apperr.Unexpected(err.Error())
		}
		teachers = append(teachers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	return teachers, nil
}

// Assign links the teacher to the named subject inside one transaction.
// Assigning twice is a no-op.
func (r *TeacherRepo) Assign(ctx context.Context, teacherID, subjectName string) error {
	return r.toggleAssignment(ctx, teacherID, subjectName, true)
}

// Unassign removes the teaching link.
func (r *TeacherRepo) Unassign(ctx context.Context, teacherID, subjectName string) error {
	return r.toggleAssignment(ctx, teacherID, subjectName, false)
}

func (r *TeacherRepo) toggleAssignment(ctx context.Context, teacherID, subjectName string, add bool) error {
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

	var profileCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM teacher_profiles WHERE teacher_id=?", teacherID).Scan(&profileCount); err != nil {
		return apperr.Unexpected(err.Error())
	}
	if profileCount == 0 {
		return apperr.NotFound("teacher does not exist")
	}
	var subjectID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM subjects WHERE name=?", subjectName).Scan(&subjectID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("subject does not exist")
	}
	if err != nil {
		return apperr.Unexpected(err.Error())
	}

	if add {
		if _, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO teacher_subjects (teacher_id, subject_id) VALUES (?,?)",
			teacherID, subjectID); err != nil {
			return apperr.Unexpected(err.Error())
		}
	} else {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM teacher_subjects WHERE teacher_id=? AND subject_id=?",
			teacherID, subjectID)
		if err != nil {
			return apperr.Unexpected(err.Error())
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperr.NotFound("teacher does not teach this subject")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Unexpected(err.Error())
	}
	committed = true
	return nil
}

// TeachesSubject reports whether the teacher is assigned to the subject.
func (r *TeacherRepo) TeachesSubject(ctx context.Context, teacherID, subjectID string) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM teacher_subjects WHERE teacher_id=? AND subject_id=?",
		teacherID, subjectID).Scan(&n); err != nil {
		return false, apperr.Unexpected(err.Error())
	}
	return n > 0, nil
}
