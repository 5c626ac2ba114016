// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/library-backend/internal/auth"
	"github.com/carterperez-dev/templates/library-backend/internal/core"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockRepository) IncrementTokenVersion(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return m.Called(ctx, id, enabled).Error(0)
}

func (m *MockRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	args := m.Called(ctx, params)
	users, _ := args.Get(0).([]User)
	return users, args.Int(1), args.Error(2)
}

func (m *MockRepository) AddRole(ctx context.Context, id, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockRepository) RemoveRole(ctx context.Context, id, role string) (bool, error) {
	args := m.Called(ctx, id, role)
	return args.Bool(0), args.Error(1)
}

var (
	patron    = core.Actor{UserID: "u-patron", Roles: []string{core.RolePatron}}
	librarian = core.Actor{UserID: "u-lib", Roles: []string{core.RoleLibrarian}}
	admin     = core.Actor{UserID: "u-admin", Roles: []string{core.RoleAdmin}}
)

func newTestService() (*Service, *MockRepository) {
	repo := new(MockRepository)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

func TestCreateRegistersDisabledPatron(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
		return u.Email == "ada@example.com" &&
			!u.Enabled &&
			len(u.Roles) == 1 && u.Roles[0] == core.RolePatron
	})).Return(nil)

	info, err := svc.Create(ctx, auth.NewUser{
		Email:        "Ada@Example.com",
		PasswordHash: "hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
	})
	require.NoError(t, err)
	assert.False(t, info.Enabled)
	assert.Equal(t, []string{core.RolePatron}, info.Roles)
	assert.NotEmpty(t, info.ID)
	repo.AssertExpectations(t)
}

func TestGetRecipientUsesFullName(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	repo.On("GetByID", ctx, "u-1").Return(&User{
		ID:        "u-1",
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}, nil)

	rcpt, err := svc.GetRecipient(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", rcpt.FullName)
	assert.Equal(t, "ada@example.com", rcpt.Email)
}

func TestLibrarianOperationsRequireRole(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	for _, actor := range []core.Actor{patron, admin} {
		_, err := svc.GetUser(ctx, actor, "u-1")
		assert.ErrorIs(t, err, core.ErrForbidden)

		_, _, err = svc.ListUsers(ctx, actor, ListUsersParams{})
		assert.ErrorIs(t, err, core.ErrForbidden)

		err = svc.DeleteUser(ctx, actor, "u-1")
		assert.ErrorIs(t, err, core.ErrForbidden)
	}

	_, err := svc.GetUser(ctx, core.Actor{}, "u-1")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestListUsersRejectsUnknownRole(t *testing.T) {
	svc, repo := newTestService()

	_, _, err := svc.ListUsers(
		context.Background(),
		librarian,
		ListUsersParams{Role: "JANITOR"},
	)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestUpdateUserLockingBumpsTokenVersion(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	locked := true

	repo.On("GetByID", ctx, "u-1").Return(&User{ID: "u-1"}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *User) bool {
		return u.AccountLocked
	})).Return(nil)
	repo.On("IncrementTokenVersion", ctx, "u-1").Return(nil)

	u, err := svc.UpdateUser(ctx, librarian, "u-1", UpdateUserRequest{
		AccountLocked: &locked,
	})
	require.NoError(t, err)
	assert.True(t, u.AccountLocked)
	repo.AssertExpectations(t)
}

func TestUpdateUserAlreadyLockedKeepsTokens(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	locked := true

	repo.On("GetByID", ctx, "u-1").Return(&User{ID: "u-1", AccountLocked: true}, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	_, err := svc.UpdateUser(ctx, librarian, "u-1", UpdateUserRequest{
		AccountLocked: &locked,
	})
	require.NoError(t, err)
	repo.AssertNotCalled(t, "IncrementTokenVersion", mock.Anything, mock.Anything)
}

func TestDeleteUserProtectsAdmins(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	target := &User{ID: "u-2", Roles: RoleSet{core.RoleAdmin}}
	repo.On("GetByID", ctx, "u-2").Return(target, nil)

	err := svc.DeleteUser(ctx, librarian, "u-2")
	assert.ErrorIs(t, err, core.ErrForbidden)
	repo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)

	both := core.Actor{
		UserID: "u-boss",
		Roles:  []string{core.RoleLibrarian, core.RoleAdmin},
	}
	repo.On("SoftDelete", ctx, "u-2").Return(nil)

	require.NoError(t, svc.DeleteUser(ctx, both, "u-2"))
}

func TestAddRole(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	_, err := svc.AddRole(ctx, librarian, "u-1", core.RoleLibrarian)
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.AddRole(ctx, admin, "u-1", "JANITOR")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	repo.On("GetByID", ctx, "u-1").
		Return(&User{ID: "u-1", Roles: RoleSet{core.RolePatron}}, nil)
	repo.On("AddRole", ctx, "u-1", core.RoleLibrarian).Return(nil).Once()

	u, err := svc.AddRole(ctx, admin, "u-1", core.RoleLibrarian)
	require.NoError(t, err)
	assert.True(t, u.Roles.Has(core.RoleLibrarian))
	repo.AssertExpectations(t)
}

func TestRemoveRole(t *testing.T) {
	t.Run("role not held", func(t *testing.T) {
		svc, repo := newTestService()
		ctx := context.Background()

		repo.On("GetByID", ctx, "u-1").
			Return(&User{ID: "u-1", Roles: RoleSet{core.RolePatron}}, nil)

		_, err := svc.RemoveRole(ctx, admin, "u-1", core.RoleLibrarian)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("last role", func(t *testing.T) {
		svc, repo := newTestService()
		ctx := context.Background()

		repo.On("GetByID", ctx, "u-1").
			Return(&User{ID: "u-1", Roles: RoleSet{core.RolePatron}}, nil)
		repo.On("RemoveRole", ctx, "u-1", core.RolePatron).Return(false, nil)

		_, err := svc.RemoveRole(ctx, admin, "u-1", core.RolePatron)
		assert.ErrorIs(t, err, core.ErrOperationNotPermitted)
	})

	t.Run("removed", func(t *testing.T) {
		svc, repo := newTestService()
		ctx := context.Background()

		repo.On("GetByID", ctx, "u-1").Return(&User{
			ID:    "u-1",
			Roles: RoleSet{core.RoleLibrarian, core.RolePatron},
		}, nil)
		repo.On("RemoveRole", ctx, "u-1", core.RoleLibrarian).Return(true, nil)

		u, err := svc.RemoveRole(ctx, admin, "u-1", core.RoleLibrarian)
		require.NoError(t, err)
		assert.Equal(t, RoleSet{core.RolePatron}, u.Roles)
	})
}

func TestGetMePropagatesNotFound(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	repo.On("GetByID", ctx, patron.UserID).Return(nil, core.ErrNotFound)

	_, err := svc.GetMe(ctx, patron)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
