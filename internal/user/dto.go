// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,min=1,max=100"`
}

type UpdateUserRequest struct {
	FirstName     *string `json:"first_name,omitempty"     validate:"omitempty,min=1,max=100"`
	LastName      *string `json:"last_name,omitempty"      validate:"omitempty,min=1,max=100"`
	Email         *string `json:"email,omitempty"          validate:"omitempty,email,max=255"`
	AccountLocked *bool   `json:"account_locked,omitempty"`
}

type AddRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=PATRON LIBRARIAN ADMIN"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Roles         []string  `json:"roles"`
	Enabled       bool      `json:"enabled"`
	AccountLocked bool      `json:"account_locked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	roles := []string(u.Roles)
	if roles == nil {
		roles = []string{}
	}

	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Roles:         roles,
		Enabled:       u.Enabled,
		AccountLocked: u.AccountLocked,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
