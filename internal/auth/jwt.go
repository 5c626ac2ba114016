// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/library-backend/internal/config"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/middleware"
)

const (
	claimEmail        = "email"
	claimRoles        = "roles"
	claimTokenVersion = "token_version"
	claimType         = "type"
	accessTokenType   = "access"
)

type JWTManager struct {
	key    *signingKey
	config config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	key, err := loadSigningKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	return &JWTManager{key: key, config: cfg}, nil
}

// NewJWTManagerFromKey assigns a fresh key id to privateKey.
func NewJWTManagerFromKey(privateKey jwk.Key, cfg config.JWTConfig) (*JWTManager, error) {
	key, err := newSigningKey(privateKey)
	if err != nil {
		return nil, err
	}
	return &JWTManager{key: key, config: cfg}, nil
}

type AccessTokenClaims struct {
	UserID       string
	Email        string
	Roles        []string
	TokenVersion int
}

func (m *JWTManager) CreateAccessToken(claims AccessTokenClaims) (string, error) {
	issuedAt := time.Now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(claims.UserID).
		IssuedAt(issuedAt).
		NotBefore(issuedAt).
		Expiration(issuedAt.Add(m.config.AccessTokenExpire)).
		Claim(claimEmail, claims.Email).
		Claim(claimRoles, claims.Roles).
		Claim(claimTokenVersion, claims.TokenVersion).
		Claim(claimType, accessTokenType).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.key.private))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// VerifyAccessToken checks signature, issuer, audience and lifetime and
// maps any claim problem to ErrTokenInvalid.
func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	raw string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.ES256(), m.key.public),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	claims, err := readAccessClaims(token)
	if err != nil {
		return nil, fmt.Errorf("verify token: %s: %w", err, core.ErrTokenInvalid)
	}
	return claims, nil
}

func readAccessClaims(token jwt.Token) (*middleware.AccessTokenClaims, error) {
	var kind string
	if err := token.Get(claimType, &kind); err != nil || kind != accessTokenType {
		return nil, errors.New("not an access token")
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, errors.New("missing subject")
	}

	roles, err := readRoles(token)
	if err != nil {
		return nil, err
	}

	var version float64
	if err := token.Get(claimTokenVersion, &version); err != nil {
		return nil, errors.New("missing token_version")
	}

	var email string
	_ = token.Get(claimEmail, &email)

	jti, _ := token.JwtID()
	expiresAt, _ := token.Expiration()

	return &middleware.AccessTokenClaims{
		UserID:       subject,
		Email:        email,
		Roles:        roles,
		TokenVersion: int(version),
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func readRoles(token jwt.Token) ([]string, error) {
	var raw []any
	if err := token.Get(claimRoles, &raw); err != nil {
		return nil, errors.New("missing roles")
	}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		role, ok := r.(string)
		if !ok {
			return nil, errors.New("malformed roles")
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (m *JWTManager) AccessTokenTTL() time.Duration {
	return m.config.AccessTokenExpire
}

func (m *JWTManager) RefreshTokenTTL() time.Duration {
	return m.config.RefreshTokenExpire
}
