package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

// LoanRepo implements the borrow/return state machine.  ApplyBorrow and
// ApplyReturn each run as a single transaction: the book row is locked
// with SELECT ... FOR UPDATE, the preconditions are checked against the
// locked state, and the copy-count change commits together with the
// borrow-record change.  Two concurrent borrows of the last copy therefore
// serialize on the row lock and the loser observes copies == 0.
type LoanRepo struct{ DB *sql.DB }

func NewLoanRepo(db *sql.DB) *LoanRepo { return &LoanRepo{DB: db} }

// ApplyBorrow creates a borrow record due loanDays from now and decrements
// the book's copies, atomically.  Preconditions, checked inside the
// transaction and in this order: the member exists, the book exists, at
// least one copy is available, and the member has no overdue record.
func (r *LoanRepo) ApplyBorrow(ctx context.Context, bookID, memberID string, loanDays int) (model.BorrowRecord, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var memberCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM member_profiles WHERE member_id=?", memberID).Scan(&memberCount); err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	if memberCount == 0 {
		return model.BorrowRecord{}, apperr.NotFound("you are not a member")
	}

	// Lock the book row for the remainder of the transaction.
	var copies uint32
	err = tx.QueryRowContext(ctx,
		"SELECT copies FROM books WHERE id=? FOR UPDATE", bookID).Scan(&copies)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BorrowRecord{}, apperr.NotFound("book not found")
	}
	if err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	if copies < 1 {
		return model.BorrowRecord{}, apperr.BookNotAvailable()
	}

	var overdue int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM borrow_records WHERE member_id=? AND due_date < UTC_TIMESTAMP()",
		memberID).Scan(&overdue); err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	if overdue > 0 {
		return model.BorrowRecord{}, apperr.OverdueBooks()
	}

	now := time.Now().UTC()
	rec := model.BorrowRecord{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		BookID:    bookID,
		DueDate:   now.AddDate(0, 0, loanDays),
		CreatedAt: now,
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO borrow_records (id, member_id, book_id, due_date) VALUES (?,?,?,?)",
		rec.ID, rec.MemberID, rec.BookID, rec.DueDate); err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	// Conditional decrement; the row lock makes the guard authoritative.
	res, err := tx.ExecContext(ctx,
		"UPDATE books SET copies = copies - 1 WHERE id=? AND copies >= 1", bookID)
	if err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return model.BorrowRecord{}, apperr.BookNotAvailable()
	}

	if err := tx.Commit(); err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	committed = true
	return rec, nil
}

// ApplyReturn deletes the member's active borrow record for the book and
// increments the book's copies, atomically.  Returning a book the member
// never borrowed fails with NotFound and leaves the count untouched.
func (r *LoanRepo) ApplyReturn(ctx context.Context, bookID, memberID string) (model.BorrowRecord, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var memberCount int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM member_profiles WHERE member_id=?", memberID).Scan(&memberCount); err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	if memberCount == 0 {
		return model.BorrowRecord{}, apperr.NotFound("you are not a member")
	}

	var rec model.BorrowRecord
	err = tx.QueryRowContext(ctx,
		`SELECT id, member_id, book_id, due_date, created_at
		 FROM borrow_records WHERE member_id=? AND book_id=? LIMIT 1 FOR UPDATE`,
		memberID, bookID).
		Scan(&rec.ID, &rec.MemberID, &rec.BookID, &rec.DueDate, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BorrowRecord{}, apperr.NotFound("this book was not borrowed by this member")
	}
	if err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM borrow_records WHERE id=?", rec.ID); err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE books SET copies = copies + 1 WHERE id=?", bookID); err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}

	if err := tx.Commit(); err != nil {
		return model.BorrowRecord{}, apperr.Unexpected(err.Error())
	}
	committed = true
	return rec, nil
}
