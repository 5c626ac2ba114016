// AngelaMos | 2026
// entity.go

package user

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

type User struct {
	ID            string     `db:"id"`
	Email         string     `db:"email"`
	PasswordHash  string     `db:"password_hash"`
	FirstName     string     `db:"first_name"`
	LastName      string     `db:"last_name"`
	Enabled       bool       `db:"enabled"`
	AccountLocked bool       `db:"account_locked"`
	Roles         RoleSet    `db:"roles"`
	TokenVersion  int        `db:"token_version"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Roles.Has(core.RoleAdmin)
}

// RoleSet scans the comma separated aggregate selected by userColumns.
type RoleSet []string

func (rs RoleSet) Has(role string) bool {
	return slices.Contains(rs, role)
}

func (rs *RoleSet) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*rs = RoleSet{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan roles: unsupported type %T", src)
	}

	if raw == "" {
		*rs = RoleSet{}
		return nil
	}

	*rs = strings.Split(raw, ",")
	return nil
}

func (rs RoleSet) Value() (driver.Value, error) {
	return strings.Join(rs, ","), nil
}
