// AngelaMos | 2026
// dto.go

package catalog

import (
	"time"
)

type CreateBookRequest struct {
	Title           string     `json:"title"            validate:"required,min=1,max=255"`
	AuthorName      string     `json:"author_name"      validate:"required,min=1,max=255"`
	ISBN            string     `json:"isbn"             validate:"required,min=10,max=17"`
	Synopsis        string     `json:"synopsis"         validate:"max=4000"`
	Genre           string     `json:"genre"            validate:"max=100"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Shareable       bool       `json:"shareable"`
}

type UpdateBookRequest struct {
	Title           *string    `json:"title,omitempty"            validate:"omitempty,min=1,max=255"`
	AuthorName      *string    `json:"author_name,omitempty"      validate:"omitempty,min=1,max=255"`
	ISBN            *string    `json:"isbn,omitempty"             validate:"omitempty,min=10,max=17"`
	Synopsis        *string    `json:"synopsis,omitempty"         validate:"omitempty,max=4000"`
	Genre           *string    `json:"genre,omitempty"            validate:"omitempty,max=100"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
}

type BookResponse struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	AuthorName      string     `json:"author_name"`
	ISBN            string     `json:"isbn"`
	Synopsis        string     `json:"synopsis"`
	Genre           string     `json:"genre"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Shareable       bool       `json:"shareable"`
	Rate            float64    `json:"rate"`
	Overdue         bool       `json:"overdue"`
	CreatedAt       time.Time  `json:"created_at"`
}

func ToBookResponse(b *Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		AuthorName:      b.AuthorName,
		ISBN:            b.ISBN,
		Synopsis:        b.Synopsis,
		Genre:           b.Genre,
		PublicationDate: b.PublicationDate,
		Shareable:       b.Shareable,
		Rate:            b.Rate,
		Overdue:         b.Overdue,
		CreatedAt:       b.CreatedAt,
	}
}

func ToBookResponseList(books []Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, ToBookResponse(&books[i]))
	}
	return out
}
