// AngelaMos | 2026
// entity.go

package feedback

import (
	"time"
)

const (
	MinNote = 0
	MaxNote = 5
)

type Feedback struct {
	ID        int64     `db:"id"`
	BookID    int64     `db:"book_id"`
	UserID    string    `db:"user_id"`
	Note      float64   `db:"note"`
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}
