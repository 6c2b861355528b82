package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gachenge/school-portal/internal/apperr"
	"github.com/Gachenge/school-portal/internal/model"
)

// MemberRepo manages library membership rows.  A member is keyed by the
// user's id; deleting the row removes lending privileges and cascades any
// active borrow records.
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

// MemberDetail is a membership row together with the member's active loans
// split into current and overdue, as returned to librarians.
type MemberDetail struct {
	model.MemberProfile
	BorrowedBooks []model.BorrowRecord
	OverdueBooks  []model.BorrowRecord
}

// Create registers the user as a library member.  The user must exist;
// registering twice fails with AlreadyRegistered.
func (r *MemberRepo) Create(ctx context.Context, userID string) (model.MemberProfile, error) {
	var userCount int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE id=?", userID).Scan(&userCount); err != nil {
		return model.MemberProfile{}, apperr.Unexpected(err.Error())
	}
	if userCount == 0 {
		return model.MemberProfile{}, apperr.NotFound("user not found")
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO member_profiles (member_id) VALUES (?)", userID)
	if err != nil {
		if isDuplicate(err) {
			return model.MemberProfile{}, apperr.AlreadyRegistered("member is already registered")
		}
		return model.MemberProfile{}, apperr.Unexpected(err.Error())
	}
	return r.get(ctx, userID)
}

func (r *MemberRepo) get(ctx context.Context, memberID string) (model.MemberProfile, error) {
	var m model.MemberProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT member_id, created_at FROM member_profiles WHERE member_id=? LIMIT 1", memberID).
		Scan(&m.MemberID, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MemberProfile{}, apperr.NotFound("member not found")
	}
	if err != nil {
		return model.MemberProfile{}, apperr.Unexpected(err.Error())
	}
	return m, nil
}

// Exists reports whether the user holds a membership.
func (r *MemberRepo) Exists(ctx context.Context, memberID string) (bool, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM member_profiles WHERE member_id=?", memberID).Scan(&n); err != nil {
		return false, apperr.Unexpected(err.Error())
	}
	return n > 0, nil
}

// GetDetail loads a member with their borrowed and overdue records.
func (r *MemberRepo) GetDetail(ctx context.Context, memberID string) (MemberDetail, error) {
	profile, err := r.get(ctx, memberID)
	if err != nil {
		return MemberDetail{}, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, member_id, book_id, due_date, created_at FROM borrow_records WHERE member_id=? ORDER BY due_date",
		memberID)
	if err != nil {
		return MemberDetail{}, apperr.Unexpected(err.Error())
	}
	defer rows.Close()

	detail := MemberDetail{
		MemberProfile: profile,
		BorrowedBooks: make([]model.BorrowRecord, 0),
		OverdueBooks:  make([]model.BorrowRecord, 0),
	}
	now := time.Now().UTC()
	for rows.Next() {
		var rec model.BorrowRecord
		if err := rows.Scan(&rec.ID, &rec.MemberID, &rec.BookID, &rec.DueDate, &rec.CreatedAt); err != nil {
			return MemberDetail{}, apperr.Unexpected(err.Error())
		}
		detail.BorrowedBooks = append(detail.BorrowedBooks, rec)
		if rec.DueDate.Before(now) {
			detail.OverdueBooks = append(detail.OverdueBooks, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return MemberDetail{}, apperr.Unexpected(err.Error())
	}
	return detail, nil
}

// List returns every membership row.
func (r *MemberRepo) List(ctx context.Context) ([]model.MemberProfile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT member_id, created_at FROM member_profiles ORDER BY created_at")
	if err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	defer rows.Close()
	members := make([]model.MemberProfile, 0)
	for rows.Next() {
		var m model.MemberProfile
		if err := rows.Scan(&m.MemberID, &m.CreatedAt); err != nil {
			return nil, apperr.Unexpected(err.Error())
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unexpected(err.Error())
	}
	return members, nil
}

// Delete revokes a membership.
func (r *MemberRepo) Delete(ctx context.Context, memberID string) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM member_profiles WHERE member_id=?", memberID)
	if err != nil {
		return apperr.Unexpected(err.Error())
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("member not found")
	}
	return nil
}
