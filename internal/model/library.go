package model

import "time"

// MemberProfile links a user to library membership.  One row per user;
// deleting the row removes lending privileges.
type MemberProfile struct {
	MemberID  string    `json:"memberId"`  // member_profiles.member_id (= users.id)
	CreatedAt time.Time `json:"createdAt"` // member_profiles.created_at
}

// Book is a catalog entry.  Copies is the number of copies currently
// available for lending and never goes below zero: it is decremented when
// a borrow record is created and incremented when one is deleted, both
// inside the same transaction as the record change.
type Book struct {
	ID        string    // books.id (UUID v4)
	Title     string    // books.title
	Author    string    // books.author
	Copies    uint32    // books.copies
	CreatedAt time.Time // books.created_at
	UpdatedAt time.Time // books.updated_at
}

// BorrowRecord is one active loan.  Records are deleted on return; no
// history is kept.  A record whose DueDate has passed makes the book
// overdue for that member and blocks further borrowing.
type BorrowRecord struct {
	ID        string    // borrow_records.id (UUID v4)
	MemberID  string    // borrow_records.member_id
	BookID    string    // borrow_records.book_id
	DueDate   time.Time // borrow_records.due_date
	CreatedAt time.Time // borrow_records.created_at
}
