package model

import "time"

// StudentProfile is the one-to-one student extension of a user.  Creating
// it promotes the user's role to STUDENT.
type StudentProfile struct {
	StudentID string    `json:"studentId"` // student_profiles.student_id (= users.id)
	CreatedAt time.Time `json:"createdAt"` // student_profiles.created_at
}

// TeacherProfile is the one-to-one teacher extension of a user.  Creating
// it promotes the user's role to TEACHER.
type TeacherProfile struct {
	TeacherID string    `json:"teacherId"` // teacher_profiles.teacher_id (= users.id)
	CreatedAt time.Time `json:"createdAt"` // teacher_profiles.created_at
}

// Subject has a unique name and many-to-many links to both student and
// teacher profiles through the student_subjects / teacher_subjects tables.
type Subject struct {
	ID        string    `json:"id"`        // subjects.id (UUID v4)
	Name      string    `json:"name"`      // subjects.name
	CreatedAt time.Time `json:"createdAt"` // subjects.created_at
}

// SubjectGrade records one numeric grade a teacher assigned to a student
// for a subject.  Only teachers who teach the subject may create or delete
// grades for it.
type SubjectGrade struct {
	ID        string    `json:"id"`        // subject_grades.id (UUID v4)
	SubjectID string    `json:"subjectId"` // subject_grades.subject_id
	StudentID string    `json:"studentId"` // subject_grades.student_id
	Grade     float64   `json:"grade"`     // subject_grades.grade
	CreatedAt time.Time `json:"createdAt"` // subject_grades.created_at
}
