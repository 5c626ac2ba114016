// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"
)

type Book struct {
	ID              int64      `db:"id"`
	Title           string     `db:"title"`
	AuthorName      string     `db:"author_name"`
	ISBN            string     `db:"isbn"`
	Synopsis        string     `db:"synopsis"`
	Genre           string     `db:"genre"`
	PublicationDate *time.Time `db:"publication_date"`
	Shareable       bool       `db:"shareable"`
	CreatedBy       *string    `db:"created_by"`
	Rate            float64    `db:"rate"`
	Overdue         bool       `db:"overdue"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

type SearchParams struct {
	Title      string
	AuthorName string
	ISBN       string
	Genre      string
	Page       int
	PageSize   int
}

func (p SearchParams) IsEmpty() bool {
	return p.Title == "" && p.AuthorName == "" && p.ISBN == "" && p.Genre == ""
}
