package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
	"github.com/Gachenge/school-portal/internal/utils"
)

func TestUserCreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	u, err := users.Create(ctx, "alice", "Alice@Example.com", "password123", 4)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email, "email is normalized")
	assert.Equal(t, model.RoleUser, u.Role)
	assert.False(t, u.IsActive)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "password123"))

	_, err = users.Create(ctx, "alice2", "alice@example.com", "password123", 4)
	assert.True(t, apperr.Is(err, apperr.KindAlreadyRegistered))
	_, err = users.Create(ctx, "alice", "alice2@example.com", "password123", 4)
	assert.True(t, apperr.Is(err, apperr.KindAlreadyRegistered))

	byName, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	bySelector, err := users.GetByUsernameOrEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, bySelector.ID)

	_, err = users.GetByUsernameOrEmail(ctx, "nobody")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUserEmailChangeDeactivates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	u, err := users.Create(ctx, "bob", "bob@example.com", "password123", 4)
	require.NoError(t, err)
	u, err = users.Activate(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, u.IsActive)

	phone := "555-0101"
	updated, emailChanged, err := users.Update(ctx, u.ID, UserEdit{Phone: &phone})
	require.NoError(t, err)
	assert.False(t, emailChanged)
	assert.True(t, updated.IsActive, "non-email edits keep the account active")

	newEmail := "bob@new.example.com"
	updated, emailChanged, err = users.Update(ctx, u.ID, UserEdit{Email: &newEmail})
	require.NoError(t, err)
	assert.True(t, emailChanged)
	assert.False(t, updated.IsActive, "email change requires re-verification")

	// Activation via the verification flow is idempotent.
	updated, err = users.Activate(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	updated, err = users.Activate(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
}

func TestUserUpdateRejectsTakenIdentity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	_, err := users.Create(ctx, "carol", "carol@example.com", "password123", 4)
	require.NoError(t, err)
	dave, err := users.Create(ctx, "dave", "dave@example.com", "password123", 4)
	require.NoError(t, err)

	taken := "carol"
	_, _, err = users.Update(ctx, dave.ID, UserEdit{Username: &taken})
	assert.True(t, apperr.Is(err, apperr.KindAlreadyRegistered))
}

func TestUserDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	u, err := users.Create(ctx, "erin", "erin@example.com", "password123", 4)
	require.NoError(t, err)
	require.NoError(t, users.Delete(ctx, u.ID))
	err = users.Delete(ctx, u.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
