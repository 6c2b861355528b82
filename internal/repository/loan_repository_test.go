package repository

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/database"
)

// setupTestDB connects to a MySQL database for testing and skips the test
// when none is reachable.  The schema is created on first use and the
// lending tables are truncated between tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	env := func(k, d string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return d
	}
	db, err := database.Open(database.Params{
		User: env("TEST_DB_USER", "root"),
		Pass: os.Getenv("TEST_DB_PASS"),
		Host: env("TEST_DB_HOST", "localhost"),
		Port: env("TEST_DB_PORT", "3306"),
		Name: env("TEST_DB_NAME", "school_portal_test"),
	})
	if err != nil {
		t.Skipf("skipping: could not connect to mysql: %v", err)
	}
	require.NoError(t, database.Migrate(db))

	ctx := context.Background()
	for _, table := range []string{"borrow_records", "member_profiles", "books", "users"} {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newTestMember registers a user row and a membership for it, returning
// the member id.
func newTestMember(t *testing.T, db *sql.DB) string {
	t.Helper()
	ctx := context.Background()
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash) VALUES (?,?,?,?)",
		id, "u-"+id[:8], id[:8]+"@example.com", "x")
	require.NoError(t, err)
	_, err = NewMemberRepo(db).Create(ctx, id)
	require.NoError(t, err)
	return id
}

func newTestBook(t *testing.T, db *sql.DB, title string, copies uint32) string {
	t.Helper()
	book, err := NewBookRepo(db).Create(context.Background(), title, "Test Author", copies)
	require.NoError(t, err)
	return book.ID
}

func bookCopies(t *testing.T, db *sql.DB, bookID string) uint32 {
	t.Helper()
	var copies uint32
	require.NoError(t, db.QueryRowContext(context.Background(),
		"SELECT copies FROM books WHERE id=?", bookID).Scan(&copies))
	return copies
}

func TestBorrowAndReturnRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	loans := NewLoanRepo(db)

	member := newTestMember(t, db)
	book := newTestBook(t, db, "The Go Programming Language", 3)

	rec, err := loans.ApplyBorrow(ctx, book, member, 7)
	require.NoError(t, err)
	assert.Equal(t, member, rec.MemberID)
	assert.Equal(t, book, rec.BookID)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 7), rec.DueDate, 5*time.Second)
	assert.Equal(t, uint32(2), bookCopies(t, db, book))

	_, err = loans.ApplyReturn(ctx, book, member)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), bookCopies(t, db, book))

	// The record is gone once returned.
	var n int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM borrow_records WHERE member_id=?", member).Scan(&n))
	assert.Zero(t, n)
}

func TestBorrowLastCopyThenUnavailable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	loans := NewLoanRepo(db)

	memberA := newTestMember(t, db)
	memberB := newTestMember(t, db)
	book := newTestBook(t, db, "X", 1)

	_, err := loans.ApplyBorrow(ctx, book, memberA, 7)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), bookCopies(t, db, book))

	_, err = loans.ApplyBorrow(ctx, book, memberB, 7)
	assert.True(t, apperr.Is(err, apperr.KindBookNotAvailable))

	_, err = loans.ApplyReturn(ctx, book, memberA)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), bookCopies(t, db, book))

	_, err = loans.ApplyBorrow(ctx, book, memberB, 7)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), bookCopies(t, db, book))
}

func TestOverdueMemberCannotBorrow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	loans := NewLoanRepo(db)

	member := newTestMember(t, db)
	overdueBook := newTestBook(t, db, "Old Loan", 1)
	freshBook := newTestBook(t, db, "New Arrival", 5)

	// Plant a loan whose due date has already passed.
	_, err := db.ExecContext(ctx,
		"INSERT INTO borrow_records (id, member_id, book_id, due_date) VALUES (?,?,?,?)",
		uuid.NewString(), member, overdueBook, time.Now().UTC().AddDate(0, 0, -1))
	require.NoError(t, err)

	_, err = loans.ApplyBorrow(ctx, freshBook, member, 7)
	assert.True(t, apperr.Is(err, apperr.KindOverdueBooks))
	assert.Equal(t, uint32(5), bookCopies(t, db, freshBook), "copies must not change on a refused borrow")

	// Returning the overdue book unblocks the member.
	_, err = loans.ApplyReturn(ctx, overdueBook, member)
	require.NoError(t, err)
	_, err = loans.ApplyBorrow(ctx, freshBook, member, 7)
	assert.NoError(t, err)
}

func TestBorrowPreconditionFailures(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	loans := NewLoanRepo(db)

	member := newTestMember(t, db)
	book := newTestBook(t, db, "Some Book", 2)

	_, err := loans.ApplyBorrow(ctx, book, uuid.NewString(), 7)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "unknown member")

	_, err = loans.ApplyBorrow(ctx, uuid.NewString(), member, 7)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "unknown book")

	_, err = loans.ApplyReturn(ctx, book, member)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "return without an active loan")
	assert.Equal(t, uint32(2), bookCopies(t, db, book))
}

func TestConcurrentBorrowOfLastCopy(t *testing.T) {
	db := setupTestDB(t)
	loans := NewLoanRepo(db)

	book := newTestBook(t, db, "Contended", 1)
	members := make([]string, 8)
	for i := range members {
		members[i] = newTestMember(t, db)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(members))
	for i, m := range members {
		wg.Add(1)
		go func(i int, m string) {
			defer wg.Done()
			_, errs[i] = loans.ApplyBorrow(context.Background(), book, m, 7)
		}(i, m)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.True(t, apperr.Is(err, apperr.KindBookNotAvailable))
		}
	}
	assert.Equal(t, 1, won, "exactly one concurrent borrow may win the last copy")
	assert.Equal(t, uint32(0), bookCopies(t, db, book))
}

func TestDuplicateMembershipRejected(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	member := newTestMember(t, db)
	_, err := NewMemberRepo(db).Create(ctx, member)
	assert.True(t, apperr.Is(err, apperr.KindAlreadyRegistered))
}

func TestDuplicateBookRejected(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	books := NewBookRepo(db)

	_, err := books.Create(ctx, "Dune", "Frank Herbert", 2)
	require.NoError(t, err)
	_, err = books.Create(ctx, "Dune", "Frank Herbert", 5)
	assert.True(t, apperr.Is(err, apperr.KindBookExists))
}
