package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

func TestBlogDuplicateAndOwnership(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	blogs := NewBlogRepo(db)

	author := newTestUser(t, db)
	other := newTestUser(t, db)

	b, err := blogs.Create(ctx, author, "First post", "hello world", nil)
	require.NoError(t, err)
	assert.Equal(t, author, b.UserID)

	// Identical title+body+author is a duplicate.
	_, err = blogs.Create(ctx, author, "First post", "hello world", nil)
	assert.True(t, apperr.Is(err, apperr.KindAlreadyRegistered))

	// A different author may publish the same text.
	_, err = blogs.Create(ctx, other, "First post", "hello world", nil)
	require.NoError(t, err)

	newTitle := "Edited post"
	_, err = blogs.Update(ctx, other, b.ID, BlogEdit{Title: &newTitle})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	edited, err := blogs.Update(ctx, author, b.ID, BlogEdit{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Edited post", edited.Title)
	assert.Equal(t, "hello world", edited.Body)

	err = blogs.Delete(ctx, other, b.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	require.NoError(t, blogs.Delete(ctx, author, b.ID))

	_, err = blogs.GetByID(ctx, b.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCommentLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	blogs := NewBlogRepo(db)
	comments := NewCommentRepo(db)

	author := newTestUser(t, db)
	commenter := newTestUser(t, db)
	admin := newTestUser(t, db)

	b, err := blogs.Create(ctx, author, "Post with comments", "body", nil)
	require.NoError(t, err)

	_, err = comments.Create(ctx, commenter, "no-such-blog", "hi", nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	cm, err := comments.Create(ctx, commenter, b.ID, "nice post", nil)
	require.NoError(t, err)

	list, err := comments.ListByBlog(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Edit is owner-only, even for admins.
	_, err = comments.Update(ctx, author, cm.ID, "edited", nil)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	edited, err := comments.Update(ctx, commenter, cm.ID, "edited", nil)
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Comment)

	// Delete is owner or admin.
	err = comments.Delete(ctx, author, model.RoleUser, cm.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	require.NoError(t, comments.Delete(ctx, admin, model.RoleAdmin, cm.ID))

	// Deleting the blog cascades its remaining comments.
	cm2, err := comments.Create(ctx, commenter, b.ID, "another", nil)
	require.NoError(t, err)
	require.NoError(t, blogs.Delete(ctx, author, b.ID))
	_, err = comments.GetByID(ctx, cm2.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
