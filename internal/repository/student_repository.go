package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

// StudentRepo manages student profiles and their subject enrollment.
type StudentRepo struct{ DB *sql.DB }

func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{DB: db} }

// StudentDetail is a student profile together with enrolled subjects and
// recorded grades.
type StudentDetail struct {
	model.StudentProfile
	Subjects []model.Subject
	Grades   []model.SubjectGrade
}

// Create registers a student profile for an existing user and promotes the
// user's role to STUDENT.  Both writes commit in one transaction so a
// profile never exists without the matching role.
func (r *StudentRepo) Create(ctx context.Context, userID string) (model.StudentProfile, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.StudentProfile{}, apperr.Unexpected(err.Error())
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var profileCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM student_profiles WHERE student_id=?", userID).Scan(&profileCount); err != nil {
		return model.StudentProfile{}, apperr.Unexpected(err.Error())
	}
	if profileCount > 0 {
		return model.StudentProfile{}, apperr.AlreadyRegistered("student is already registered")
	}
	var userCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE id=?", userID).Scan(&userCount); err != nil {
		return model.StudentProfile{}, apperr.Unexpected(err.Error())
	}
	if userCount == 0 {
		return model.StudentProfile{}, apperr.NotFound("user not found")
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO student_profiles (student_id) VALUES (?)", userID); err != nil {
		return model.StudentProfile{}, apperr.Unexpected(err.Error())
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=?", model.RoleStudent, userID); err != nil {
		return model.StudentProfile{}, apperr.Unexpected(err.Error())
	}
	if err := tx.Commit(); err != nil {
		return model.StudentProfile{}, apperr.Unexpected(err.Error())
	}
	committed = true
	return r.get(ctx, userID)
}

func (r *StudentRepo) get(ctx context.Context, studentID string) (model.StudentProfile, error) {
	var p model.StudentProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT student_id, created_at FROM student_profiles WHERE student_id=? LIMIT 1", studentID).
		Scan(&p.StudentID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StudentProfile{}, apperr.NotFound("student does not exist")
	}
	if err != nil {
		return model.StudentProfile{}, apperr.Unexpected(err.Error())
	}
	return p, nil
}

// GetDetail loads a student with enrolled subjects and grades.
func (r *StudentRepo) GetDetail(ctx context.Context, studentID string) (StudentDetail, error) {
	profile, err := r.get(ctx, studentID)
	if err != nil {
		return StudentDetail{}, err
	}
	detail := StudentDetail{
		StudentProfile: profile,
		Subjects:       make([]model.Subject, 0),
		Grades:         make([]model.SubjectGrade, 0),
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT s.id, s.name, s.created_at FROM subjects s
		 JOIN student_subjects ss ON ss.subject_id = s.id
		 WHERE ss.student_id=? ORDER BY s.name`, studentID)
	if err != nil {
		return StudentDetail{}, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return StudentDetail{}, apperr.Unexpected(err.Error())
		}
		detail.Subjects = append(detail.Subjects, s)
	}
	if err := rows.Err(); err != nil {
		return StudentDetail{}, apperr.Unexpected(err.Error())
	}

	grades, err := r.Grades(ctx, studentID)
	if err != nil {
		return StudentDetail{}, err
	}
	detail.Grades = grades
	return detail, nil
}

// List returns every student profile.
func (r *StudentRepo) List(ctx context.Context) ([]model.StudentProfile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT student_id, created_at FROM student_profiles ORDER BY created_at")
	if err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	students := make([]model.StudentProfile, 0)
	for rows.Next() {
		var p model.StudentProfile
		if err := rows.Scan(&p.StudentID, &p.CreatedAt); err != nil {
			return nil, apperr.Unexpected(err.Error())
		}
		students = append(students, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	return students, nil
}

// Enroll links the student to the named subject.  The existence checks and
// the join-row insert run in one transaction so a concurrent subject
// deletion cannot leave a dangling link.  Enrolling twice is a no-op.
func (r *StudentRepo) Enroll(ctx context.Context, studentID, subjectName string) error {
	return r.toggleEnrollment(ctx, studentID, subjectName, true)
}

// Unenroll removes the link.  A student not enrolled in the subject fails
// with NotFound.
func (r *StudentRepo) Unenroll(ctx context.Context, studentID, subjectName string) error {
	return r.toggleEnrollment(ctx, studentID, subjectName, false)
}

func (r *StudentRepo) toggleEnrollment(ctx context.Context, studentID, subjectName string, add bool) error {
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
		"SELECT COUNT(*) FROM student_profiles WHERE student_id=?", studentID).Scan(&profileCount); err != nil {
		return apperr.Unexpected(err.Error())
	}
	if profileCount == 0 {
		return apperr.NotFound("student does not exist")
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
			"INSERT IGNORE INTO student_subjects (student_id, subject_id) VALUES (?,?)",
			studentID, subjectID); err != nil {
			return apperr.Unexpected(err.Error())
		}
	} else {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM student_subjects WHERE student_id=? AND subject_id=?",
			studentID, subjectID)
		if err != nil {
			return apperr.Unexpected(err.Error())
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperr.NotFound("student is not enrolled in this subject")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Unexpected(err.Error())
	}
	committed = true
	return nil
}

// Grades lists the student's recorded grades.
func (r *StudentRepo) Grades(ctx context.Context, studentID string) ([]model.SubjectGrade, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, subject_id, student_id, grade, created_at FROM subject_grades WHERE student_id=? ORDER BY created_at",
		studentID)
	if err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	grades := make([]model.SubjectGrade, 0)
	for rows.Next() {
		var g model.SubjectGrade
		if err := rows.Scan(&g.ID, &g.SubjectID, &g.StudentID, &g.Grade, &g.CreatedAt); err != nil {
			return nil, apperr.Unexpected(err.Error())
		}
		grades = append(grades, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	return grades, nil
}
