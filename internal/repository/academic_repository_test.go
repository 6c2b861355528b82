package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

// setupAcademicDB extends setupTestDB by clearing the academic tables.
func setupAcademicDB(t *testing.T) *sql.DB {
	t.Helper()
	db := setupTestDB(t)
	ctx := context.Background()
	for _, table := range []string{"subject_grades", "student_subjects", "teacher_subjects",
		"student_profiles", "teacher_profiles", "subjects"} {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
	return db
}

func newTestUser(t *testing.T, db *sql.DB) string {
	t.Helper()
	id := uuid.NewString()
	_, err := db.ExecContext(context.Background(),
		"INSERT INTO users (id, username, email, password_hash) VALUES (?,?,?,?)",
		id, "u-"+id[:8], id[:8]+"@example.com", "x")
	require.NoError(t, err)
	return id
}

func userRole(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	var role string
	require.NoError(t, db.QueryRowContext(context.Background(),
		"SELECT role FROM users WHERE id=?", id).Scan(&role))
	return role
}

func TestStudentCreatePromotesRole(t *testing.T) {
	db := setupAcademicDB(t)
	ctx := context.Background()
	students := NewStudentRepo(db)

	userID := newTestUser(t, db)
	require.Equal(t, model.RoleUser, userRole(t, db, userID))

	s, err := students.Create(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, s.StudentID)
	assert.Equal(t, model.RoleStudent, userRole(t, db, userID))

	_, err = students.Create(ctx, userID)
	assert.True(t, apperr.Is(err, apperr.KindAlreadyRegistered))

	_, err = students.Create(ctx, uuid.NewString())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTeacherCreatePromotesRole(t *testing.T) {
	db := setupAcademicDB(t)
	ctx := context.Background()
	teachers := NewTeacherRepo(db)

	userID := newTestUser(t, db)
	tp, err := teachers.Create(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, tp.TeacherID)
	assert.Equal(t, model.RoleTeacher, userRole(t, db, userID))

	_, err = teachers.Create(ctx, userID)
	assert.True(t, apperr.Is(err, apperr.KindAlreadyRegistered))
}

func TestEnrollmentToggle(t *testing.T) {
	db := setupAcademicDB(t)
	ctx := context.Background()
	students := NewStudentRepo(db)
	subjects := NewSubjectRepo(db)

	studentID := newTestUser(t, db)
	_, err := students.Create(ctx, studentID)
	require.NoError(t, err)
	_, err = subjects.Create(ctx, "Mathematics")
	require.NoError(t, err)

	require.NoError(t, students.Enroll(ctx, studentID, "Mathematics"))
	// Enrolling twice is a no-op.
	require.NoError(t, students.Enroll(ctx, studentID, "Mathematics"))

	detail, err := students.GetDetail(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, detail.Subjects, 1)
	assert.Equal(t, "Mathematics", detail.Subjects[0].Name)

	err = students.Enroll(ctx, studentID, "Alchemy")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, students.Unenroll(ctx, studentID, "Mathematics"))
	err = students.Unenroll(ctx, studentID, "Mathematics")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTeachingAssignment(t *testing.T) {
	db := setupAcademicDB(t)
	ctx := context.Background()
	teachers := NewTeacherRepo(db)
	subjects := NewSubjectRepo(db)

	teacherID := newTestUser(t, db)
	_, err := teachers.Create(ctx, teacherID)
	require.NoError(t, err)
	subj, err := subjects.Create(ctx, "Physics")
	require.NoError(t, err)

	require.NoError(t, teachers.Assign(ctx, teacherID, "Physics"))
	teaches, err := teachers.TeachesSubject(ctx, teacherID, subj.ID)
	require.NoError(t, err)
	assert.True(t, teaches)

	detail, err := teachers.GetDetail(ctx, teacherID)
	require.NoError(t, err)
	require.Len(t, detail.Subjects, 1)

	require.NoError(t, teachers.Unassign(ctx, teacherID, "Physics"))
	err = teachers.Unassign(ctx, teacherID, "Physics")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGradeRequiresTeachingAssignment(t *testing.T) {
	db := setupAcademicDB(t)
	ctx := context.Background()
	students := NewStudentRepo(db)
	teachers := NewTeacherRepo(db)
	subjects := NewSubjectRepo(db)
	grades := NewGradeRepo(db)

	studentID := newTestUser(t, db)
	_, err := students.Create(ctx, studentID)
	require.NoError(t, err)
	teacherID := newTestUser(t, db)
	_, err = teachers.Create(ctx, teacherID)
	require.NoError(t, err)
	_, err = subjects.Create(ctx, "Chemistry")
	require.NoError(t, err)

	// Not yet assigned to the subject.
	_, err = grades.Create(ctx, teacherID, model.RoleTeacher, "Chemistry", studentID, 85)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, teachers.Assign(ctx, teacherID, "Chemistry"))
	g, err := grades.Create(ctx, teacherID, model.RoleTeacher, "Chemistry", studentID, 85)
	require.NoError(t, err)
	assert.Equal(t, 85.0, g.Grade)
	assert.Equal(t, studentID, g.StudentID)

	list, err := students.Grades(ctx, studentID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// A teacher who does not teach the subject cannot delete the grade.
	otherTeacher := newTestUser(t, db)
	_, err = teachers.Create(ctx, otherTeacher)
	require.NoError(t, err)
	err = grades.Delete(ctx, otherTeacher, model.RoleTeacher, g.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, grades.Delete(ctx, teacherID, model.RoleTeacher, g.ID))
	err = grades.Delete(ctx, teacherID, model.RoleTeacher, g.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestGradeAdminBypassesAssignment(t *testing.T) {
	db := setupAcademicDB(t)
	ctx := context.Background()
	students := NewStudentRepo(db)
	subjects := NewSubjectRepo(db)
	grades := NewGradeRepo(db)

	studentID := newTestUser(t, db)
	_, err := students.Create(ctx, studentID)
	require.NoError(t, err)
	_, err = subjects.Create(ctx, "History")
	require.NoError(t, err)

	adminID := newTestUser(t, db)
	g, err := grades.Create(ctx, adminID, model.RoleAdmin, "History", studentID, 70)
	require.NoError(t, err)
	require.NoError(t, grades.Delete(ctx, adminID, model.RoleAdmin, g.ID))
}

func TestSubjectUniqueness(t *testing.T) {
	db := setupAcademicDB(t)
	ctx := context.Background()
	subjects := NewSubjectRepo(db)

	_, err := subjects.Create(ctx, "Biology")
	require.NoError(t, err)
	_, err = subjects.Create(ctx, "Biology")
	assert.True(t, apperr.Is(err, apperr.KindAlreadyRegistered))
}
