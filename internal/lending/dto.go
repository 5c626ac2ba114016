// AngelaMos | 2026
// dto.go

package lending

import (
	"time"
)

// LoanResponse is keyed by book id; loan_id identifies the episode.
type LoanResponse struct {
	ID             int64      `json:"id"`
	LoanID         int64      `json:"loan_id"`
	Title          string     `json:"title"`
	AuthorName     string     `json:"author_name"`
	ISBN           string     `json:"isbn"`
	Rate           float64    `json:"rate"`
	Email          string     `json:"email"`
	Returned       bool       `json:"returned"`
	ReturnApproved bool       `json:"return_approved"`
	LateDays       int        `json:"late_days"`
	BorrowDate     time.Time  `json:"borrow_date"`
	DueDate        time.Time  `json:"due_date"`
	ReturnDate     *time.Time `json:"return_date,omitempty"`
}

func ToLoanResponse(r *Receipt) LoanResponse {
	return LoanResponse{
		ID:             r.BookID,
		LoanID:         r.ID,
		Title:          r.Title,
		AuthorName:     r.AuthorName,
		ISBN:           r.ISBN,
		Rate:           r.Rate,
		Email:          r.Email,
		Returned:       r.Returned,
		ReturnApproved: r.ReturnApproved,
		LateDays:       r.LateDays,
		BorrowDate:     r.BorrowDate,
		DueDate:        r.DueDate,
		ReturnDate:     r.ReturnDate,
	}
}

func ToLoanResponseList(receipts []Receipt) []LoanResponse {
	out := make([]LoanResponse, 0, len(receipts))
	for i := range receipts {
		out = append(out, ToLoanResponse(&receipts[i]))
	}
	return out
}
