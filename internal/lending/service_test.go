// AngelaMos | 2026
// service_test.go

package lending

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/library-backend/internal/catalog"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/metrics"
)

// memLedger enforces one open loan per book under a mutex, mirroring the
// partial unique index.
type memLedger struct {
	mu     sync.Mutex
	nextID int64
	loans  []*Loan
	books  *memBooks
	emails map[string]string
}

func newMemLedger(books *memBooks) *memLedger {
	return &memLedger{books: books, emails: map[string]string{}}
}

func (m *memLedger) FindOpen(_ context.Context, bookID int64) (*Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.loans {
		if l.BookID == bookID && !l.ReturnApproved {
			cp := *l
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("find open loan: %w", core.ErrNotFound)
}

func (m *memLedger) Insert(_ context.Context, loan *Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.loans {
		if l.BookID == loan.BookID && !l.ReturnApproved {
			return ErrOpenLoanExists
		}
	}

	m.nextID++
	loan.ID = m.nextID
	cp := *loan
	m.loans = append(m.loans, &cp)
	return nil
}

func (m *memLedger) MarkReturned(_ context.Context, loanID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.loans {
		if l.ID == loanID && !l.Returned && !l.ReturnApproved {
			l.Returned = true
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *memLedger) MarkApproved(_ context.Context, loanID int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.loans {
		if l.ID == loanID && l.Returned && !l.ReturnApproved {
			l.ReturnApproved = true
			l.ReturnDate = &at
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *memLedger) GetView(ctx context.Context, loanID int64) (*LoanView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.loans {
		if l.ID == loanID {
			return m.view(ctx, l)
		}
	}
	return nil, core.ErrNotFound
}

func (m *memLedger) view(ctx context.Context, l *Loan) (*LoanView, error) {
	book, err := m.books.GetBook(ctx, l.BookID)
	if err != nil {
		return nil, err
	}
	return &LoanView{
		Loan:       *l,
		Title:      book.Title,
		AuthorName: book.AuthorName,
		ISBN:       book.ISBN,
		Rate:       book.Rate,
		Email:      m.emails[l.UserID],
	}, nil
}

func (m *memLedger) ListByUser(
	ctx context.Context,
	userID string,
	returnedOnly bool,
	_ core.PageParams,
) ([]LoanView, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []LoanView
	for _, l := range m.loans {
		if l.UserID != userID || (returnedOnly && !l.Returned) {
			continue
		}
		v, err := m.view(ctx, l)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *v)
	}
	return out, len(out), nil
}

func (m *memLedger) ListOverdue(_ context.Context, now time.Time) ([]OverdueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []OverdueEntry
	for _, l := range m.loans {
		if l.Returned || !l.DueDate.Before(now) {
			continue
		}
		book := m.books.byID[l.BookID]
		out = append(out, OverdueEntry{
			LoanID:     l.ID,
			Title:      book.Title,
			AuthorName: book.AuthorName,
			ISBN:       book.ISBN,
			DueDate:    l.DueDate,
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Email:      m.emails[l.UserID],
		})
	}
	return out, nil
}

func (m *memLedger) Stats(_ context.Context, now time.Time) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var s Stats
	for _, l := range m.loans {
		if !l.ReturnApproved {
			s.OpenLoans++
		}
		if l.Returned && !l.ReturnApproved {
			s.PendingApproval++
		}
		if !l.Returned && l.DueDate.Before(now) {
			s.Overdue++
		}
	}
	return &s, nil
}

type memBooks struct {
	byID map[int64]*catalog.Book
}

func (b *memBooks) GetBook(_ context.Context, id int64) (*catalog.Book, error) {
	book, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("get book %d: %w", id, core.ErrNotFound)
	}
	cp := *book
	return &cp, nil
}

type fixture struct {
	svc    *Service
	ledger *memLedger
	books  *memBooks
	now    time.Time
}

var (
	t0 = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

	u1        = core.Actor{UserID: "u1", Roles: []string{core.RolePatron}}
	u2        = core.Actor{UserID: "u2", Roles: []string{core.RolePatron}}
	librarian = core.Actor{UserID: "lib", Roles: []string{core.RoleLibrarian}}
)

func newFixture() *fixture {
	books := &memBooks{byID: map[int64]*catalog.Book{
		7: {ID: 7, Title: "Dune", AuthorName: "Frank Herbert", ISBN: "9780441013593", Shareable: true, Rate: 4.5},
		8: {ID: 8, Title: "Solaris", AuthorName: "Stanislaw Lem", ISBN: "9780156027601", Shareable: false},
	}}

	ledger := newMemLedger(books)
	ledger.emails["u1"] = "u1@example.com"
	ledger.emails["u2"] = "u2@example.com"

	f := &fixture{ledger: ledger, books: books, now: t0}
	f.svc = NewService(
		ledger,
		books,
		core.ClockFunc(func() time.Time { return f.now }),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.New(),
	)
	return f
}

func appMessage(t *testing.T, err error) string {
	t.Helper()

	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Message
}

func TestLendingLifecycleExample(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	borrowed, err := f.svc.Borrow(ctx, 7, u1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), borrowed.BookID)
	assert.Equal(t, t0, borrowed.BorrowDate)
	assert.Equal(t, t0.Add(14*24*time.Hour), borrowed.DueDate)
	assert.False(t, borrowed.Returned)
	assert.False(t, borrowed.ReturnApproved)
	assert.Equal(t, "u1@example.com", borrowed.Email)
	assert.InDelta(t, 4.5, borrowed.Rate, 0.001)
	assert.Zero(t, borrowed.LateDays)

	_, err = f.svc.Borrow(ctx, 7, u2)
	require.ErrorIs(t, err, core.ErrOperationNotPermitted)
	assert.Equal(t, msgAlreadyBorrowed, appMessage(t, err))

	f.now = t0.Add(3 * time.Hour)
	returned, err := f.svc.ReturnBook(ctx, 7, u1)
	require.NoError(t, err)
	assert.True(t, returned.Returned)
	assert.False(t, returned.ReturnApproved)
	assert.Zero(t, returned.LateDays)

	approved, err := f.svc.ApproveReturn(ctx, 7, librarian)
	require.NoError(t, err)
	assert.True(t, approved.ReturnApproved)
	require.NotNil(t, approved.ReturnDate)
	assert.Equal(t, f.now, *approved.ReturnDate)

	again, err := f.svc.Borrow(ctx, 7, u2)
	require.NoError(t, err)
	assert.NotEqual(t, borrowed.ID, again.ID)
}

func TestBorrowRejectsHolderWithSameError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Borrow(ctx, 7, u1)
	require.NoError(t, err)

	_, err = f.svc.Borrow(ctx, 7, u1)
	require.ErrorIs(t, err, core.ErrOperationNotPermitted)
	assert.Equal(t, msgAlreadyBorrowed, appMessage(t, err))

	f.now = t0.Add(time.Hour)
	_, err = f.svc.ReturnBook(ctx, 7, u1)
	require.NoError(t, err)

	_, err = f.svc.Borrow(ctx, 7, u2)
	require.ErrorIs(t, err, core.ErrOperationNotPermitted, "pending approval still blocks")
}

func TestNotShareableGatesEveryTransition(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Borrow(ctx, 7, u1)
	require.NoError(t, err)
	f.books.byID[7].Shareable = false

	_, err = f.svc.Borrow(ctx, 7, u2)
	assert.ErrorIs(t, err, core.ErrOperationNotPermitted)
	assert.Equal(t, msgNotShareable, appMessage(t, err))

	_, err = f.svc.ReturnBook(ctx, 7, u1)
	assert.ErrorIs(t, err, core.ErrOperationNotPermitted)

	_, err = f.svc.ApproveReturn(ctx, 7, librarian)
	assert.ErrorIs(t, err, core.ErrOperationNotPermitted)

	_, err = f.svc.Borrow(ctx, 8, u1)
	assert.ErrorIs(t, err, core.ErrOperationNotPermitted)
}

func TestMissingBookIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Borrow(ctx, 99, u1)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.svc.ReturnBook(ctx, 99, u1)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = f.svc.ApproveReturn(ctx, 99, librarian)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReturnWithoutOpenLoanIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ReturnBook(ctx, 7, u1)
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, msgNoActiveBorrow, appMessage(t, err))

	_, err = f.svc.Borrow(ctx, 7, u1)
	require.NoError(t, err)
	_, err = f.svc.ReturnBook(ctx, 7, u1)
	require.NoError(t, err)

	_, err = f.svc.ReturnBook(ctx, 7, u1)
	require.ErrorIs(t, err, core.ErrNotFound, "already returned")

	_, err = f.svc.ApproveReturn(ctx, 7, librarian)
	require.NoError(t, err)

	_, err = f.svc.ReturnBook(ctx, 7, u1)
	require.ErrorIs(t, err, core.ErrNotFound, "all loans approved")
}

func TestApproveRequiresPendingReturn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ApproveReturn(ctx, 7, librarian)
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, msgNoPendingApproval, appMessage(t, err))

	_, err = f.svc.Borrow(ctx, 7, u1)
	require.NoError(t, err)

	_, err = f.svc.ApproveReturn(ctx, 7, librarian)
	require.ErrorIs(t, err, core.ErrNotFound, "not yet returned")
}

func TestApproveRequiresLibrarian(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.ApproveReturn(ctx, 7, u1)
	assert.ErrorIs(t, err, core.ErrForbidden)

	admin := core.Actor{UserID: "adm", Roles: []string{core.RoleAdmin}}
	_, err = f.svc.ApproveReturn(ctx, 7, admin)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.svc.Borrow(ctx, 7, core.Actor{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestLateDaysOnReturnAndApprove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Borrow(ctx, 7, u1)
	require.NoError(t, err)
	due := t0.Add(LoanPeriod)

	f.now = due.Add(36 * time.Hour)
	returned, err := f.svc.ReturnBook(ctx, 7, u1)
	require.NoError(t, err)
	assert.Equal(t, 1, returned.LateDays)

	f.now = due.Add(3*24*time.Hour + 23*time.Hour)
	approved, err := f.svc.ApproveReturn(ctx, 7, librarian)
	require.NoError(t, err)
	assert.Equal(t, 3, approved.LateDays, "measured against approval time")
}

func TestLateDaysZeroWhenOnTime(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Borrow(ctx, 7, u1)
	require.NoError(t, err)

	f.now = t0.Add(LoanPeriod)
	returned, err := f.svc.ReturnBook(ctx, 7, u1)
	require.NoError(t, err)
	assert.Zero(t, returned.LateDays)

	approved, err := f.svc.ApproveReturn(ctx, 7, librarian)
	require.NoError(t, err)
	assert.Zero(t, approved.LateDays)
}

func TestConcurrentBorrowsYieldOneLoan(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const attempts = 64

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)

	start := make(chan struct{})
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			actor := core.Actor{
				UserID: fmt.Sprintf("user-%d", i),
				Roles:  []string{core.RolePatron},
			}
			_, err := f.svc.Borrow(ctx, 7, actor)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, core.ErrOperationNotPermitted):
				rejected++
			}
		}(i)
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, rejected)
	assert.Len(t, f.ledger.loans, 1)
}

func TestHistoryAndOverdue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	page := core.PageParams{Page: 1, PageSize: 20}

	_, err := f.svc.Borrow(ctx, 7, u1)
	require.NoError(t, err)

	borrowed, total, err := f.svc.BorrowedBy(ctx, u1, page)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, borrowed, 1)

	returned, _, err := f.svc.ReturnedBy(ctx, u1, page)
	require.NoError(t, err)
	assert.Empty(t, returned)

	_, err = f.svc.Overdue(ctx, u1)
	assert.ErrorIs(t, err, core.ErrForbidden)

	f.now = t0.Add(LoanPeriod + 2*24*time.Hour)
	entries, err := f.svc.Overdue(ctx, librarian)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Dune", entries[0].Title)
	assert.Equal(t, 2, entries[0].DaysOverdue(f.now))

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{OpenLoans: 1, Overdue: 1}, *stats)
}

func TestReceiptForFreezesClosedLoans(t *testing.T) {
	due := t0.Add(LoanPeriod)
	approvedAt := due.Add(2 * 24 * time.Hour)

	closed := LoanView{Loan: Loan{
		DueDate:        due,
		Returned:       true,
		ReturnApproved: true,
		ReturnDate:     &approvedAt,
	}}

	r := receiptFor(closed, due.Add(30*24*time.Hour))
	assert.Equal(t, 2, r.LateDays)
}
