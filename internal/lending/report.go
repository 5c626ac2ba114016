// AngelaMos | 2026
// report.go

package lending

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

const (
	ReportFilename = "overdue_books_report.txt"
	reportDate     = "2006-01-02 15:04"
)

// WriteOverdueReport renders entries as the plain-text download.
func WriteOverdueReport(w io.Writer, entries []OverdueEntry) error {
	bw := bufio.NewWriter(w)

	if len(entries) == 0 {
		fmt.Fprintln(bw, "No overdue books found.")
		return bw.Flush()
	}

	fmt.Fprint(bw, "Overdue Books Report\n====================\n\n")
	for _, e := range entries {
		fmt.Fprintf(bw, "Title: %s\n", e.Title)
		fmt.Fprintf(bw, "Author: %s\n", e.AuthorName)
		fmt.Fprintf(bw, "ISBN: %s\n", e.ISBN)
		fmt.Fprintf(bw, "Due Date: %s\n", e.DueDate.UTC().Format(reportDate))
		fmt.Fprintf(bw, "Currently with: %s %s (%s)\n", e.FirstName, e.LastName, e.Email)
		fmt.Fprintln(bw, "----------------------------")
	}

	return bw.Flush()
}

// DaysOverdue is used by the CLI listing.
func (e OverdueEntry) DaysOverdue(now time.Time) int {
	return LateDays(e.DueDate, now)
}
