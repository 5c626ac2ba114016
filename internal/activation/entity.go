// AngelaMos | 2026
// entity.go

package activation

import (
	"time"
)

const (
	CodeLength = 6
	TokenTTL   = 15 * time.Minute
)

const (
	msgTokenNotFound = "Token not found."
	msgTokenExpired  = "Activation token has expired. A new token has been sent."
)

type Token struct {
	ID          int64      `db:"id"`
	UserID      string     `db:"user_id"`
	Code        string     `db:"code"`
	CreatedAt   time.Time  `db:"created_at"`
	ExpiresAt   time.Time  `db:"expires_at"`
	ValidatedAt *time.Time `db:"validated_at"`
}

// IsExpired is strict: a token is still valid at exactly ExpiresAt.
func (t *Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type Recipient struct {
	UserID   string
	Email    string
	FullName string
}
