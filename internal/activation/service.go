// AngelaMos | 2026
// service.go

package activation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/mail"
	"github.com/carterperez-dev/templates/library-backend/internal/metrics"
)

const activationSubject = "Account Activation"

type Notifier interface {
	Send(ctx context.Context, msg mail.Message) error
}

type UserStore interface {
	GetRecipient(ctx context.Context, userID string) (*Recipient, error)
	Enable(ctx context.Context, userID string) error
}

type Service struct {
	repo          Repository
	users         UserStore
	notifier      Notifier
	clock         core.Clock
	activationURL string
	generate      func(length int) (string, error)
	logger        *slog.Logger
	metrics       *metrics.Recorder
}

func NewService(
	repo Repository,
	users UserStore,
	notifier Notifier,
	clock core.Clock,
	activationURL string,
	logger *slog.Logger,
	recorder *metrics.Recorder,
) *Service {
	return &Service{
		repo:          repo,
		users:         users,
		notifier:      notifier,
		clock:         clock,
		activationURL: activationURL,
		generate:      core.GenerateNumericCode,
		logger:        logger,
		metrics:       recorder,
	}
}

// Issue persists a fresh code for the user and emails it. The token is
// stored before sending and is kept when delivery fails.
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	recipient, err := s.users.GetRecipient(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("issue activation code: %w", err)
	}

	code, err := s.generate(CodeLength)
	if err != nil {
		return "", fmt.Errorf("issue activation code: %w", err)
	}

	now := s.clock.Now()
	token := &Token{
		UserID:    recipient.UserID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(TokenTTL),
	}

	if err := s.repo.Save(ctx, token); err != nil {
		s.metrics.Activation("issue", metrics.OutcomeError)
		return "", fmt.Errorf("issue activation code: %w", err)
	}

	err = s.notifier.Send(ctx, mail.Message{
		To:       recipient.Email,
		ToName:   recipient.FullName,
		Subject:  activationSubject,
		Template: mail.TemplateActivateAccount,
		Data: mail.ActivationData{
			Username:         recipient.FullName,
			ActivationCode:   code,
			ConfirmationURL:  s.activationURL,
			ExpiresInMinutes: int(TokenTTL.Minutes()),
		},
	})
	if err != nil {
		s.metrics.Activation("issue", metrics.OutcomeError)
		s.logger.Warn("activation email failed",
			"user_id", recipient.UserID,
			"token_id", token.ID,
			"error", err,
		)
		return "", fmt.Errorf("send activation email: %w", err)
	}

	s.metrics.Activation("issue", metrics.OutcomeSuccess)
	core.AddSpanEvent(ctx, "activation.issued",
		attribute.String("user_id", recipient.UserID),
		attribute.Int64("token_id", token.ID),
	)
	s.logger.Info("activation code issued",
		"user_id", recipient.UserID,
		"token_id", token.ID,
		"expires_at", token.ExpiresAt,
	)

	return code, nil
}

// Validate enables the account owning code. An expired code triggers a
// resend to the same user before failing.
func (s *Service) Validate(ctx context.Context, code string) error {
	if !isWellFormed(code) {
		s.metrics.Activation("validate", metrics.OutcomeRejected)
		return core.NotPermitted(msgTokenNotFound)
	}

	token, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, core.ErrNotFound) {
		s.metrics.Activation("validate", metrics.OutcomeRejected)
		return core.NotPermitted(msgTokenNotFound)
	}
	if err != nil {
		return fmt.Errorf("validate activation code: %w", err)
	}

	now := s.clock.Now()

	if token.IsExpired(now) {
		s.metrics.Activation("validate", metrics.OutcomeRejected)
		s.logger.Warn("expired activation code presented, resending",
			"user_id", token.UserID,
			"token_id", token.ID,
			"expired_at", token.ExpiresAt,
		)

		if _, err := s.Issue(ctx, token.UserID); err != nil {
			return fmt.Errorf("resend activation code: %w", err)
		}
		return core.NotPermitted(msgTokenExpired)
	}

	if err := s.users.Enable(ctx, token.UserID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundf("user %s not found", token.UserID)
		}
		return fmt.Errorf("enable account: %w", err)
	}

	if err := s.repo.MarkValidated(ctx, token.ID, now); err != nil {
		return fmt.Errorf("validate activation code: %w", err)
	}

	s.metrics.Activation("validate", metrics.OutcomeSuccess)
	core.AddSpanEvent(ctx, "activation.validated",
		attribute.String("user_id", token.UserID),
		attribute.Int64("token_id", token.ID),
	)
	s.logger.Info("account activated",
		"user_id", token.UserID,
		"token_id", token.ID,
	)

	return nil
}

func isWellFormed(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
