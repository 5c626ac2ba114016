// AngelaMos | 2026
// decide.go

package lending

import (
	"time"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

const (
	msgNotShareable       = "The requested book cannot be borrowed since it is not shareable"
	msgReturnNotShareable = "The requested book cannot be returned since it is not shareable"
	msgAlreadyBorrowed    = "The requested book is already borrowed."
	msgNoActiveBorrow     = "No active borrow transaction found for this book"
	msgNoPendingApproval  = "No active borrow transaction found or this book already approved."
)

// State is the lending state of a book, derived from its open loan.
type State int

const (
	StateAvailable State = iota
	StateBorrowed
	StatePendingApproval
)

func (s State) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateBorrowed:
		return "borrowed"
	case StatePendingApproval:
		return "pending_approval"
	default:
		return "unknown"
	}
}

// StateOf projects the open loan of a book, nil when every loan is approved.
func StateOf(open *Loan) State {
	switch {
	case open == nil || open.ReturnApproved:
		return StateAvailable
	case !open.Returned:
		return StateBorrowed
	default:
		return StatePendingApproval
	}
}

func DecideBorrow(shareable bool, state State) error {
	if !shareable {
		return core.NotPermitted(msgNotShareable)
	}
	if state != StateAvailable {
		return core.NotPermitted(msgAlreadyBorrowed)
	}
	return nil
}

func DecideReturn(shareable bool, state State) error {
	if !shareable {
		return core.NotPermitted(msgReturnNotShareable)
	}
	if state != StateBorrowed {
		return core.NotFoundf(msgNoActiveBorrow)
	}
	return nil
}

func DecideApprove(shareable bool, state State) error {
	if !shareable {
		return core.NotPermitted(msgReturnNotShareable)
	}
	if state != StatePendingApproval {
		return core.NotFoundf(msgNoPendingApproval)
	}
	return nil
}

func DueDate(borrowed time.Time) time.Time {
	return borrowed.Add(LoanPeriod)
}

// LateDays counts whole days past due; partial days round down.
func LateDays(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due) / (24 * time.Hour))
}
