package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gachenge/school-portal/internal/model"
)

func TestEveryOperationListsKnownRoles(t *testing.T) {
	ops := Operations()
	require.NotEmpty(t, ops)
	for _, op := range ops {
		roles := Roles(op)
		assert.NotEmpty(t, roles, "operation %s has an empty allow-list", op)
		for _, r := range roles {
			assert.True(t, model.ValidRole(r), "operation %s lists unknown role %q", op, r)
		}
	}
}

func TestAdminOnlyOperations(t *testing.T) {
	adminOnly := []string{
		OpUserList, OpUserGet, OpUserDelete,
		OpStudentCreate, OpTeacherCreate,
		OpTeacherAssign, OpTeacherUnassign,
		OpSubjectCreate, OpSubjectEdit, OpSubjectDelete,
	}
	for _, op := range adminOnly {
		assert.True(t, Allowed(op, model.RoleAdmin), "%s should allow ADMIN", op)
		for _, r := range []string{model.RoleUser, model.RoleStudent, model.RoleTeacher, model.RoleLibrarian} {
			assert.False(t, Allowed(op, r), "%s should deny %s", op, r)
		}
	}
}

func TestLibraryManagementNeedsLibrarianOrAdmin(t *testing.T) {
	for _, op := range []string{OpBookCreate, OpBookEdit, OpBookDelete, OpMemberCreate, OpMemberDelete, OpMemberList, OpMemberGet} {
		assert.True(t, Allowed(op, model.RoleAdmin))
		assert.True(t, Allowed(op, model.RoleLibrarian))
		assert.False(t, Allowed(op, model.RoleUser))
		assert.False(t, Allowed(op, model.RoleStudent))
		assert.False(t, Allowed(op, model.RoleTeacher))
	}
}

func TestUnknownOperationFailsClosed(t *testing.T) {
	assert.False(t, Allowed("no.such.operation", model.RoleAdmin))
}

func TestEnrollmentIsStudentOnly(t *testing.T) {
	for _, op := range []string{OpStudentEnroll, OpStudentUnenroll, OpStudentSeeGrades} {
		assert.True(t, Allowed(op, model.RoleStudent))
		assert.False(t, Allowed(op, model.RoleAdmin), "%s is restricted to the student's own profile", op)
	}
}
