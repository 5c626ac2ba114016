// AngelaMos | 2026
// session.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

// ClientInfo identifies the device a session was opened from.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// Refresh rotates a refresh token. Presenting an already rotated token
// revokes its whole family.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
	client ClientInfo,
) (*AuthResponse, error) {
	session, err := s.sessions.FindByHash(ctx, core.HashToken(refreshToken))
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	if session.IsUsed {
		s.revokeFamily(ctx, session, "token reuse")
		return nil, ErrTokenReuse
	}

	switch now := time.Now(); {
	case session.Revoked():
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	case session.Expired(now):
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	if user.AccountLocked {
		s.revokeFamily(ctx, session, "account locked")
		return nil, core.NotPermitted(msgAccountLocked)
	}

	return s.issue(ctx, user, client, session.FamilyID, session.ID)
}

func (s *Service) revokeFamily(ctx context.Context, session *Session, reason string) {
	if err := s.sessions.RevokeFamily(ctx, session.FamilyID); err != nil {
		s.logger.Error("revoke session family failed",
			"family_id", session.FamilyID,
			"reason", reason,
			"error", err,
		)
		return
	}
	s.logger.Warn("session family revoked",
		"user_id", session.UserID,
		"family_id", session.FamilyID,
		"reason", reason,
	)
}

// Logout ends the session behind refreshToken and blacklists the access
// token that made the call. Unknown refresh tokens are ignored.
func (s *Service) Logout(
	ctx context.Context,
	refreshToken, userID, jti string,
	accessExpiresAt time.Time,
) error {
	session, err := s.sessions.FindByHash(ctx, core.HashToken(refreshToken))
	switch {
	case errors.Is(err, core.ErrNotFound):
	case err != nil:
		return fmt.Errorf("logout: %w", err)
	case session.UserID != userID:
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	default:
		if err := s.sessions.Revoke(ctx, session.ID); err != nil &&
			!errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("logout: %w", err)
		}
	}

	if err := s.blacklist.Add(ctx, jti, accessExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// LogoutAll revokes every session and invalidates outstanding access
// tokens by bumping the token version.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.sessions.RevokeUser(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	return nil
}

func (s *Service) ListSessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	active, err := s.sessions.ListActive(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]SessionInfo, len(active))
	for i, a := range active {
		out[i] = SessionInfo{
			ID:        a.ID,
			UserAgent: a.UserAgent,
			IPAddress: a.IPAddress,
			CreatedAt: a.CreatedAt,
			ExpiresAt: a.ExpiresAt,
		}
	}
	return out, nil
}

func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if session.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeSessions deletes sessions that expired before the cutoff.
func (s *Service) PurgeSessions(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.sessions.PurgeExpired(ctx, before)
	if err != nil {
		return 0, err
	}
	s.logger.Info("expired sessions purged", "count", n, "before", before)
	return n, nil
}

// issue signs an access token and opens a session in familyID, starting
// a new family when familyID is empty. A non-empty previousID is marked
// rotated to the new session.
func (s *Service) issue(
	ctx context.Context,
	user *UserInfo,
	client ClientInfo,
	familyID, previousID string,
) (*AuthResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Roles:        user.Roles,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	refresh, err := core.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	if familyID == "" {
		familyID = uuid.NewString()
	}

	session := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: core.HashToken(refresh),
		FamilyID:  familyID,
		ExpiresAt: time.Now().Add(s.jwt.RefreshTokenTTL()),
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	if previousID != "" {
		if err := s.sessions.Rotate(ctx, previousID, session.ID); err != nil {
			s.logger.Warn("mark session rotated failed", "session_id", previousID, "error", err)
		}
	}

	ttl := s.jwt.AccessTokenTTL()
	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    "Bearer",
			ExpiresIn:    int(ttl / time.Second),
			ExpiresAt:    time.Now().Add(ttl),
		},
	}, nil
}
