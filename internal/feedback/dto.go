// AngelaMos | 2026
// dto.go

package feedback

import (
	"time"
)

type CreateFeedbackRequest struct {
	BookID  int64   `json:"book_id" validate:"required,gt=0"`
	Note    float64 `json:"note"    validate:"gte=0,lte=5"`
	Comment string  `json:"comment" validate:"required,min=1,max=2000"`
}

type FeedbackResponse struct {
	ID          int64     `json:"id"`
	Note        float64   `json:"note"`
	Comment     string    `json:"comment"`
	OwnFeedback bool      `json:"own_feedback"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToFeedbackResponse(f *Feedback, callerID string) FeedbackResponse {
	return FeedbackResponse{
		ID:          f.ID,
		Note:        f.Note,
		Comment:     f.Comment,
		OwnFeedback: f.UserID == callerID,
		CreatedAt:   f.CreatedAt,
	}
}

func ToFeedbackResponseList(items []Feedback, callerID string) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(items))
	for i := range items {
		out = append(out, ToFeedbackResponse(&items[i], callerID))
	}
	return out
}
