package user

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdateUserProfile(ctx context.Context, userUID, username, phone, city string) (int, error) {
	args := m.Called(ctx, userUID, username, phone, city)
	return args.Int(0), args.Error(1)
}

func (m *UserRepoMock) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func newTestService(repo *UserRepoMock) *UserService {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewUserService(repo, authz.New(authz.Policy{}), logger)
}

func storedUser() *models.User {
	return &models.User{
		UID:          "uid-1",
		Email:        "user@example.com",
		Username:     "testuser",
		PasswordHash: "secret-hash",
		Role:         models.RoleUser,
		IsActive:     true,
		Phone:        "+79990001122",
		City:         "Москва",
	}
}

func TestReadProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("профиль не содержит хэша пароля", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "uid-1").Return(storedUser(), nil)

		actor := authz.ActorFromUser("uid-2", "other@example.com", "user", false)
		profile, err := newTestService(repo).Read(ctx, actor, "uid-1")

		require.NoError(t, err)
		assert.Equal(t, "uid-1", profile.UID)
		assert.Equal(t, "testuser", profile.Username)
		assert.Equal(t, "Москва", profile.City)
	})

	t.Run("аноним не видит профили", func(t *testing.T) {
		_, err := newTestService(new(UserRepoMock)).Read(ctx, authz.Actor{}, "uid-1")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("пользователь не найден", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "ghost").Return(nil, repository.ErrNotFound)

		actor := authz.ActorFromUser("uid-1", "user@example.com", "user", false)
		_, err := newTestService(repo).Read(ctx, actor, "ghost")

		assert.True(t, IsNotFound(err))
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	req := models.DummyUserUpdate{Username: "newname", Phone: "+79990003344", City: "Казань"}

	t.Run("владелец обновляет свой профиль", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "uid-1").Return(storedUser(), nil)
		repo.On("UpdateUserProfile", mock.Anything, "uid-1", "newname", "+79990003344", "Казань").Return(1, nil)

		actor := authz.ActorFromUser("uid-1", "user@example.com", "user", false)
		count, err := newTestService(repo).Update(ctx, actor, "uid-1", req)

		assert.NoError(t, err)
		assert.Equal(t, 1, count)
		repo.AssertExpectations(t)
	})

	t.Run("чужой пользователь не может обновить профиль", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "uid-1").Return(storedUser(), nil)

		actor := authz.ActorFromUser("uid-2", "other@example.com", "user", false)
		_, err := newTestService(repo).Update(ctx, actor, "uid-1", req)

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("модератор обновляет чужой профиль", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUser", mock.Anything, "uid-1").Return(storedUser(), nil)
		repo.On("UpdateUserProfile", mock.Anything, "uid-1", "newname", "+79990003344", "Казань").Return(1, nil)

		moderator := authz.ActorFromUser("mod-uid", "mod@example.com", "moderator", false)
		count, err := newTestService(repo).Update(ctx, moderator, "uid-1", req)

		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestListProfiles(t *testing.T) {
	ctx := context.Background()

	repo := new(UserRepoMock)
	repo.On("ListUsers", mock.Anything, 10, 0).Return([]*models.User{storedUser()}, nil)

	actor := authz.ActorFromUser("uid-2", "other@example.com", "user", false)
	profiles, err := newTestService(repo).List(ctx, actor, 10, 0)

	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "uid-1", profiles[0].UID)
}
