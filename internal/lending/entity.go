// AngelaMos | 2026
// entity.go

package lending

import (
	"time"
)

// LoanPeriod is fixed; due dates are never extended.
const LoanPeriod = 14 * 24 * time.Hour

type Loan struct {
	ID             int64      `db:"id"`
	UserID         string     `db:"user_id"`
	BookID         int64      `db:"book_id"`
	BorrowDate     time.Time  `db:"borrow_date"`
	DueDate        time.Time  `db:"due_date"`
	ReturnDate     *time.Time `db:"return_date"`
	Returned       bool       `db:"returned"`
	ReturnApproved bool       `db:"return_approved"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// LoanView is a loan joined with its book and borrower.
type LoanView struct {
	Loan
	Title      string  `db:"title"`
	AuthorName string  `db:"author_name"`
	ISBN       string  `db:"isbn"`
	Rate       float64 `db:"rate"`
	Email      string  `db:"email"`
}

// Receipt is the outcome of a lending transition.
type Receipt struct {
	LoanView
	LateDays int
}

type OverdueEntry struct {
	LoanID     int64     `db:"loan_id"`
	Title      string    `db:"title"`
	AuthorName string    `db:"author_name"`
	ISBN       string    `db:"isbn"`
	DueDate    time.Time `db:"due_date"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	Email      string    `db:"email"`
}

type Stats struct {
	OpenLoans       int `db:"open_loans"       json:"open_loans"`
	PendingApproval int `db:"pending_approval" json:"pending_approval"`
	Overdue         int `db:"overdue"          json:"overdue"`
}
