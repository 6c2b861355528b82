// Package authz holds the per-operation role allow-lists.  Every protected
// endpoint names its operation here; the RequireOp middleware is the single
// gate that consults the table.  There is no role inheritance: an operation
// lists every role it accepts explicitly.
package authz

import "github.com/Gachenge/school-portal/internal/model"

// Operation names used as keys into the policy table.  Named after what the
// endpoint does, grouped by area.
const (
	OpUserList   = "users.list"
	OpUserGet    = "users.get"
	OpUserEdit   = "users.edit" // further restricted to the caller's own id in the handler
	OpUserDelete = "users.delete"

	OpBookList     = "library.books.list" // membership checked in the handler for plain users
	OpBookGet      = "library.books.get"
	OpBookCreate   = "library.books.create"
	OpBookEdit     = "library.books.edit"
	OpBookDelete   = "library.books.delete"
	OpMemberList   = "library.members.list"
	OpMemberCreate = "library.members.create"
	OpMemberGet    = "library.members.get"
	OpMemberDelete = "library.members.delete"
	OpBorrow       = "library.borrow"
	OpReturn       = "library.return"

	OpStudentList      = "students.list"
	OpStudentCreate    = "students.create"
	OpStudentGet       = "students.get"
	OpStudentEnroll    = "students.enroll"
	OpStudentUnenroll  = "students.unenroll"
	OpStudentSeeGrades = "students.grades"

	OpTeacherList     = "teachers.list"
	OpTeacherCreate   = "teachers.create"
	OpTeacherGet      = "teachers.get"
	OpTeacherAssign   = "teachers.assign"
	OpTeacherUnassign = "teachers.unassign"
	OpGradeCreate     = "teachers.grade.create"
	OpGradeDelete     = "teachers.grade.delete"

	OpSubjectList   = "subjects.list"
	OpSubjectCreate = "subjects.create"
	OpSubjectGet    = "subjects.get"
	OpSubjectEdit   = "subjects.edit"
	OpSubjectDelete = "subjects.delete"

	OpBlogCreate    = "blog.create"
	OpBlogList      = "blog.list"
	OpBlogGet       = "blog.get"
	OpBlogEdit      = "blog.edit"   // ownership checked in the service layer
	OpBlogDelete    = "blog.delete" // ownership checked in the service layer
	OpCommentCreate = "comments.create"
	OpCommentList   = "comments.list"
	OpCommentGet    = "comments.get"
	OpCommentEdit   = "comments.edit"   // ownership checked in the service layer
	OpCommentDelete = "comments.delete" // owner or admin, checked in the service layer
)

// anyRole grants access to every authenticated caller.  Ownership and
// membership restrictions still apply inside the handler or repository.
var anyRole = []string{model.RoleUser, model.RoleStudent, model.RoleTeacher, model.RoleLibrarian, model.RoleAdmin}

// notPlainUser is every role except USER, for operations that reject only
// unpromoted accounts.
var notPlainUser = []string{model.RoleStudent, model.RoleTeacher, model.RoleLibrarian, model.RoleAdmin}

// policy maps each operation to the set of roles allowed to perform it.
var policy = map[string][]string{
	OpUserList:   {model.RoleAdmin},
	OpUserGet:    {model.RoleAdmin},
	OpUserEdit:   anyRole,
	OpUserDelete: {model.RoleAdmin},

	OpBookList:     anyRole,
	OpBookGet:      anyRole,
	OpBookCreate:   {model.RoleAdmin, model.RoleLibrarian},
	OpBookEdit:     {model.RoleAdmin, model.RoleLibrarian},
	OpBookDelete:   {model.RoleAdmin, model.RoleLibrarian},
	OpMemberList:   {model.RoleAdmin, model.RoleLibrarian},
	OpMemberCreate: {model.RoleAdmin, model.RoleLibrarian},
	OpMemberGet:    {model.RoleAdmin, model.RoleLibrarian},
	OpMemberDelete: {model.RoleAdmin, model.RoleLibrarian},
	OpBorrow:       anyRole,
	OpReturn:       anyRole,

	OpStudentList:      {model.RoleTeacher, model.RoleAdmin},
	OpStudentCreate:    {model.RoleAdmin},
	OpStudentGet:       {model.RoleAdmin, model.RoleTeacher},
	OpStudentEnroll:    {model.RoleStudent},
	OpStudentUnenroll:  {model.RoleStudent},
	OpStudentSeeGrades: {model.RoleStudent},

	OpTeacherList:     {model.RoleAdmin, model.RoleTeacher},
	OpTeacherCreate:   {model.RoleAdmin},
	OpTeacherGet:      {model.RoleAdmin, model.RoleTeacher},
	OpTeacherAssign:   {model.RoleAdmin},
	OpTeacherUnassign: {model.RoleAdmin},
	OpGradeCreate:     {model.RoleTeacher, model.RoleAdmin},
	OpGradeDelete:     {model.RoleTeacher, model.RoleAdmin},

	OpSubjectList:   notPlainUser,
	OpSubjectCreate: {model.RoleAdmin},
	OpSubjectGet:    notPlainUser,
	OpSubjectEdit:   {model.RoleAdmin},
	OpSubjectDelete: {model.RoleAdmin},

	OpBlogCreate:    anyRole,
	OpBlogList:      anyRole,
	OpBlogGet:       anyRole,
	OpBlogEdit:      anyRole,
	OpBlogDelete:    anyRole,
	OpCommentCreate: anyRole,
	OpCommentList:   anyRole,
	OpCommentGet:    anyRole,
	OpCommentEdit:   anyRole,
	OpCommentDelete: anyRole,
}

// Allowed reports whether role may perform op.  Unknown operations deny
// everyone so a missing table entry fails closed.
func Allowed(op, role string) bool {
	for _, r := range policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Roles returns the allow-list for op.  Used by tests to assert the table
// stays complete.
func Roles(op string) []string { return policy[op] }

// Operations returns every operation known to the policy table.
func Operations() []string {
	ops := make([]string, 0, len(policy))
	for op := range policy {
		ops = append(ops, op)
	}
	return ops
}
