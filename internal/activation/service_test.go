// AngelaMos | 2026
// service_test.go

package activation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/library-backend/internal/core"
	"github.com/carterperez-dev/templates/library-backend/internal/mail"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, token *Token) error {
	args := m.Called(ctx, token)
	if args.Error(0) == nil {
		token.ID = 99
	}
	return args.Error(0)
}

func (m *MockRepository) FindByCode(ctx context.Context, code string) (*Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Token), args.Error(1)
}

func (m *MockRepository) MarkValidated(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetRecipient(ctx context.Context, userID string) (*Recipient, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Recipient), args.Error(1)
}

func (m *MockUserStore) Enable(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

const (
	testUserID = "5f0c6a57-5a4e-4f0e-9d2b-0a7c1f6c2b11"
	testURL    = "http://localhost:4200/activate-account"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo     *MockRepository
	users    *MockUserStore
	notifier *MockNotifier
	now      time.Time
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:     new(MockRepository),
		users:    new(MockUserStore),
		notifier: new(MockNotifier),
		now:      t0,
	}
	f.svc = NewService(
		f.repo,
		f.users,
		f.notifier,
		core.ClockFunc(func() time.Time { return f.now }),
		testURL,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		nil,
	)
	f.svc.generate = func(int) (string, error) { return "123456", nil }

	t.Cleanup(func() {
		f.repo.AssertExpectations(t)
		f.users.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	return f
}

func (f *fixture) recipient() *Recipient {
	return &Recipient{
		UserID:   testUserID,
		Email:    "ada@example.com",
		FullName: "Ada Lovelace",
	}
}

func TestService_Issue(t *testing.T) {
	f := newFixture(t)

	f.users.On("GetRecipient", mock.Anything, testUserID).Return(f.recipient(), nil).Once()
	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(tok *Token) bool {
		return tok.UserID == testUserID &&
			tok.Code == "123456" &&
			tok.CreatedAt.Equal(t0) &&
			tok.ExpiresAt.Equal(t0.Add(15*time.Minute)) &&
			tok.ValidatedAt == nil
	})).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, mock.MatchedBy(func(msg mail.Message) bool {
		data, ok := msg.Data.(mail.ActivationData)
		return ok &&
			msg.To == "ada@example.com" &&
			msg.Subject == "Account Activation" &&
			msg.Template == mail.TemplateActivateAccount &&
			data.ActivationCode == "123456" &&
			data.ConfirmationURL == testURL &&
			data.Username == "Ada Lovelace"
	})).Return(nil).Once()

	code, err := f.svc.Issue(context.Background(), testUserID)

	require.NoError(t, err)
	assert.Equal(t, "123456", code)
}

func TestService_Issue_SendFailureKeepsToken(t *testing.T) {
	f := newFixture(t)

	f.users.On("GetRecipient", mock.Anything, testUserID).Return(f.recipient(), nil).Once()
	f.repo.On("Save", mock.Anything, mock.AnythingOfType("*activation.Token")).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, mock.Anything).
		Return(fmt.Errorf("dial: %w", core.ErrSendFailed)).Once()

	code, err := f.svc.Issue(context.Background(), testUserID)

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSendFailed)
	assert.Empty(t, code)
	f.repo.AssertNumberOfCalls(t, "Save", 1)
}

func TestService_Issue_UnknownUser(t *testing.T) {
	f := newFixture(t)

	f.users.On("GetRecipient", mock.Anything, testUserID).
		Return(nil, fmt.Errorf("get user: %w", core.ErrNotFound)).Once()

	_, err := f.svc.Issue(context.Background(), testUserID)

	assert.ErrorIs(t, err, core.ErrNotFound)
	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Validate_UnknownCode(t *testing.T) {
	f := newFixture(t)

	f.repo.On("FindByCode", mock.Anything, "000000").
		Return(nil, fmt.Errorf("find: %w", core.ErrNotFound)).Once()

	err := f.svc.Validate(context.Background(), "000000")

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrOperationNotPermitted)
	assert.Equal(t, "Token not found.", appMessage(t, err))

	f.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "MarkValidated", mock.Anything, mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "Enable", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestService_Validate_MalformedCodeSkipsLookup(t *testing.T) {
	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		t.Run(fmt.Sprintf("code=%q", code), func(t *testing.T) {
			f := newFixture(t)

			err := f.svc.Validate(context.Background(), code)

			assert.ErrorIs(t, err, core.ErrOperationNotPermitted)
			f.repo.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Validate_ExpiredResendsOnce(t *testing.T) {
	f := newFixture(t)
	expired := &Token{
		ID:        7,
		UserID:    testUserID,
		Code:      "654321",
		CreatedAt: t0.Add(-20 * time.Minute),
		ExpiresAt: t0.Add(-5 * time.Minute),
	}

	f.repo.On("FindByCode", mock.Anything, "654321").Return(expired, nil).Once()
	f.users.On("GetRecipient", mock.Anything, testUserID).Return(f.recipient(), nil).Once()
	f.repo.On("Save", mock.Anything, mock.MatchedBy(func(tok *Token) bool {
		return tok.UserID == testUserID && tok.ExpiresAt.Equal(t0.Add(TokenTTL))
	})).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, mock.MatchedBy(func(msg mail.Message) bool {
		return msg.To == "ada@example.com"
	})).Return(nil).Once()

	err := f.svc.Validate(context.Background(), "654321")

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrOperationNotPermitted)
	assert.Equal(t,
		"Activation token has expired. A new token has been sent.",
		appMessage(t, err),
	)

	assert.Nil(t, expired.ValidatedAt)
	f.repo.AssertNumberOfCalls(t, "Save", 1)
	f.notifier.AssertNumberOfCalls(t, "Send", 1)
	f.users.AssertNotCalled(t, "Enable", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "MarkValidated", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Validate_ExpiredResendFailurePropagates(t *testing.T) {
	f := newFixture(t)
	expired := &Token{
		ID:        7,
		UserID:    testUserID,
		Code:      "654321",
		ExpiresAt: t0.Add(-time.Second),
	}

	f.repo.On("FindByCode", mock.Anything, "654321").Return(expired, nil).Once()
	f.users.On("GetRecipient", mock.Anything, testUserID).Return(f.recipient(), nil).Once()
	f.repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, mock.Anything).
		Return(fmt.Errorf("smtp: %w", core.ErrSendFailed)).Once()

	err := f.svc.Validate(context.Background(), "654321")

	assert.ErrorIs(t, err, core.ErrSendFailed)
	assert.NotErrorIs(t, err, core.ErrOperationNotPermitted)
}

func TestService_Validate_Success(t *testing.T) {
	f := newFixture(t)
	valid := &Token{
		ID:        11,
		UserID:    testUserID,
		Code:      "123456",
		CreatedAt: t0.Add(-time.Minute),
		ExpiresAt: t0.Add(14 * time.Minute),
	}

	f.repo.On("FindByCode", mock.Anything, "123456").Return(valid, nil).Once()
	f.users.On("Enable", mock.Anything, testUserID).Return(nil).Once()
	f.repo.On("MarkValidated", mock.Anything, int64(11), t0).Return(nil).Once()

	require.NoError(t, f.svc.Validate(context.Background(), "123456"))
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestService_Validate_AtExactExpiryIsValid(t *testing.T) {
	f := newFixture(t)
	tok := &Token{ID: 12, UserID: testUserID, Code: "123456", ExpiresAt: t0}

	f.repo.On("FindByCode", mock.Anything, "123456").Return(tok, nil).Once()
	f.users.On("Enable", mock.Anything, testUserID).Return(nil).Once()
	f.repo.On("MarkValidated", mock.Anything, int64(12), t0).Return(nil).Once()

	require.NoError(t, f.svc.Validate(context.Background(), "123456"))
}

func TestService_Validate_RevalidationRestamps(t *testing.T) {
	f := newFixture(t)
	earlier := t0.Add(-2 * time.Minute)
	tok := &Token{
		ID:          13,
		UserID:      testUserID,
		Code:        "123456",
		ExpiresAt:   t0.Add(10 * time.Minute),
		ValidatedAt: &earlier,
	}

	f.repo.On("FindByCode", mock.Anything, "123456").Return(tok, nil).Once()
	f.users.On("Enable", mock.Anything, testUserID).Return(nil).Once()
	f.repo.On("MarkValidated", mock.Anything, int64(13), t0).Return(nil).Once()

	require.NoError(t, f.svc.Validate(context.Background(), "123456"))
}

func TestService_Validate_MissingUser(t *testing.T) {
	f := newFixture(t)
	tok := &Token{ID: 14, UserID: testUserID, Code: "123456", ExpiresAt: t0.Add(time.Minute)}

	f.repo.On("FindByCode", mock.Anything, "123456").Return(tok, nil).Once()
	f.users.On("Enable", mock.Anything, testUserID).
		Return(fmt.Errorf("set enabled: %w", core.ErrNotFound)).Once()

	err := f.svc.Validate(context.Background(), "123456")

	assert.ErrorIs(t, err, core.ErrNotFound)
	f.repo.AssertNotCalled(t, "MarkValidated", mock.Anything, mock.Anything, mock.Anything)
}

func appMessage(t *testing.T, err error) string {
	t.Helper()

	var appErr *core.AppError
	require.True(t, errors.As(err, &appErr))
	return appErr.Message
}
