// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/middleware"
)

const (
	msgAccountLocked   = "Your account has been locked."
	msgAccountDisabled = "Your account is not activated yet. Check your email for the activation code."
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrEmailExists        = errors.New("email already exists")
)

type UserInfo struct {
	ID            string
	Email         string
	FirstName     string
	LastName      string
	PasswordHash  string
	Roles         []string
	Enabled       bool
	AccountLocked bool
	TokenVersion  int
	CreatedAt     time.Time
}

type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, user NewUser) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Activator issues and redeems emailed activation codes.
type Activator interface {
	Issue(ctx context.Context, userID string) (string, error)
	Validate(ctx context.Context, code string) error
}

type Service struct {
	sessions  Repository
	jwt       *JWTManager
	users     UserProvider
	activator Activator
	blacklist *Blacklist
	logger    *slog.Logger
}

func NewService(
	sessions Repository,
	jwt *JWTManager,
	users UserProvider,
	activator Activator,
	blacklist *Blacklist,
	logger *slog.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		jwt:       jwt,
		users:     users,
		activator: activator,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Login answers unknown emails and wrong passwords identically and only
// reveals the lock or activation state once the password matched.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	client ClientInfo,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(req.Email))
	switch {
	case errors.Is(err, core.ErrNotFound):
		_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, upgraded, err := core.VerifyPasswordTimingSafe(req.Password, &user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := checkStanding(user); err != nil {
		return nil, err
	}

	if upgraded != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, upgraded); err != nil {
			s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	return s.issue(ctx, user, client, "", "")
}

func checkStanding(user *UserInfo) error {
	if user.AccountLocked {
		return core.NotPermitted(msgAccountLocked)
	}
	if !user.Enabled {
		return core.NotPermitted(msgAccountDisabled)
	}
	return nil
}

// Register creates a disabled PATRON account and emails its activation
// code. No tokens are issued until the account is activated.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if errors.Is(err, core.ErrDuplicateKey) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	if _, err := s.activator.Issue(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return user, nil
}

func (s *Service) Activate(ctx context.Context, code string) error {
	return s.activator.Validate(ctx, strings.TrimSpace(code))
}

// ChangePassword ends every session of the user on success.
func (s *Service) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	ok, _, err := core.VerifyPasswordWithRehash(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	return s.LogoutAll(ctx, userID)
}

// VerifyAccessToken checks signature, blacklist and token version. A
// blacklist lookup failure is logged and does not reject the token.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if claims.JTI != "" {
		revoked, err := s.blacklist.Contains(ctx, claims.JTI)
		switch {
		case err != nil:
			s.logger.Warn("blacklist check failed", "error", err)
		case revoked:
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
		}
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func toUserResponse(user *UserInfo) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Roles:     user.Roles,
		CreatedAt: user.CreatedAt,
	}
}
