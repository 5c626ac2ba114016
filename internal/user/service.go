// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/library-backend/internal/activation"
	"github.com/carterperez-dev/templates/library-backend/internal/auth"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create registers a disabled account holding only the PATRON role.
func (s *Service) Create(
	ctx context.Context,
	nu auth.NewUser,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(nu.Email),
		PasswordHash: nu.PasswordHash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Enabled:      false,
		Roles:        RoleSet{core.RolePatron},
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetRecipient(
	ctx context.Context,
	userID string,
) (*activation.Recipient, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &activation.Recipient{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName(),
	}, nil
}

func (s *Service) Enable(ctx context.Context, userID string) error {
	return s.repo.SetEnabled(ctx, userID, true)
}

func (s *Service) GetMe(ctx context.Context, actor core.Actor) (*User, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, actor.UserID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	actor core.Actor,
	req UpdateProfileRequest,
) (*User, error) {
	if actor.UserID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteMe(ctx context.Context, actor core.Actor) error {
	if actor.UserID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.repo.SoftDelete(ctx, actor.UserID)
}

func (s *Service) GetUser(
	ctx context.Context,
	actor core.Actor,
	id string,
) (*User, error) {
	if err := actor.Require("get user", core.RoleLibrarian); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	actor core.Actor,
	params ListUsersParams,
) ([]User, int, error) {
	if err := actor.Require("list users", core.RoleLibrarian); err != nil {
		return nil, 0, err
	}

	if params.Role != "" && !core.IsKnownRole(params.Role) {
		return nil, 0, fmt.Errorf(
			"list users: unknown role %q: %w",
			params.Role,
			core.ErrInvalidInput,
		)
	}

	return s.repo.List(ctx, params)
}

// UpdateUser edits profile fields. Locking an account also invalidates
// its outstanding access tokens.
func (s *Service) UpdateUser(
	ctx context.Context,
	actor core.Actor,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	if err := actor.Require("update user", core.RoleLibrarian); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}

	locking := req.AccountLocked != nil && *req.AccountLocked && !user.AccountLocked
	if req.AccountLocked != nil {
		user.AccountLocked = *req.AccountLocked
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if locking {
		if err := s.repo.IncrementTokenVersion(ctx, user.ID); err != nil {
			return nil, err
		}
		s.logger.Info("account locked", "user_id", user.ID, "by", actor.UserID)
	}

	return user, nil
}

func (s *Service) DeleteUser(
	ctx context.Context,
	actor core.Actor,
	id string,
) error {
	if err := actor.Require("delete user", core.RoleLibrarian); err != nil {
		return err
	}

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if target.IsAdmin() && !actor.HasRole(core.RoleAdmin) {
		return fmt.Errorf("delete admin user: %w", core.ErrForbidden)
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", id, "by", actor.UserID)
	return nil
}

func (s *Service) AddRole(
	ctx context.Context,
	actor core.Actor,
	id, role string,
) (*User, error) {
	if err := actor.Require("add role", core.RoleAdmin); err != nil {
		return nil, err
	}

	if !core.IsKnownRole(role) {
		return nil, fmt.Errorf("add role: unknown role %q: %w", role, core.ErrInvalidInput)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.Roles.Has(role) {
		if err := s.repo.AddRole(ctx, id, role); err != nil {
			return nil, err
		}
		user.Roles = append(user.Roles, role)
		s.logger.Info("role granted", "user_id", id, "role", role, "by", actor.UserID)
	}

	return user, nil
}

// RemoveRole never leaves a user without roles.
func (s *Service) RemoveRole(
	ctx context.Context,
	actor core.Actor,
	id, role string,
) (*User, error) {
	if err := actor.Require("remove role", core.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.Roles.Has(role) {
		return nil, core.NotFoundf("user %s does not hold role %s", id, role)
	}

	removed, err := s.repo.RemoveRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, core.NotPermitted("A user must keep at least one role")
	}

	remaining := make(RoleSet, 0, len(user.Roles))
	for _, r := range user.Roles {
		if r != role {
			remaining = append(remaining, r)
		}
	}
	user.Roles = remaining

	s.logger.Info("role revoked", "user_id", id, "role", role, "by", actor.UserID)
	return user, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		PasswordHash:  u.PasswordHash,
		Roles:         []string(u.Roles),
		Enabled:       u.Enabled,
		AccountLocked: u.AccountLocked,
		TokenVersion:  u.TokenVersion,
		CreatedAt:     u.CreatedAt,
	}
}

var (
	_ auth.UserProvider    = (*Service)(nil)
	_ activation.UserStore = (*Service)(nil)
)
