package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/kopstant/lms-backend/internal/lib/jwt"
	"github.com/kopstant/lms-backend/internal/lib/password"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/services/auth"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) TouchLastLogin(ctx context.Context, userUID string, at time.Time) error {
	args := m.Called(ctx, userUID, at)
	return args.Error(0)
}

func newMaker() customjwt.Maker {
	return customjwt.NewJWTMaker("test-secret", 15*time.Minute, 24*time.Hour)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	repo := new(UserRepoMock)
	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "user@example.com" &&
			u.Username == "testuser" &&
			u.Role == models.RoleUser &&
			u.IsActive &&
			password.CompareHash(u.PasswordHash, "strongpassword") == nil
	})).Return("uid-1", nil)

	service := auth.NewAuthService(repo, newMaker(), newLogger())
	uid, err := service.Register(ctx, "user@example.com", "testuser", "strongpassword")

	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	repo.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	hashed, err := password.GetHash("strongpassword")
	require.NoError(t, err)

	activeUser := &models.User{
		UID:          "uid-1",
		Email:        "user@example.com",
		Username:     "testuser",
		PasswordHash: hashed,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	t.Run("успешный вход выдает пару токенов", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeUser, nil)
		repo.On("TouchLastLogin", mock.Anything, "uid-1", mock.AnythingOfType("time.Time")).Return(nil)

		service := auth.NewAuthService(repo, newMaker(), newLogger())
		pair, err := service.Login(ctx, "user@example.com", "strongpassword")

		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, models.RoleUser, pair.Role)
		repo.AssertCalled(t, "TouchLastLogin", mock.Anything, "uid-1", mock.AnythingOfType("time.Time"))
	})

	t.Run("неверный пароль", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(activeUser, nil)

		service := auth.NewAuthService(repo, newMaker(), newLogger())
		_, err := service.Login(ctx, "user@example.com", "wrongpassword")

		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("пользователь не найден", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, errors.New("not found"))

		service := auth.NewAuthService(repo, newMaker(), newLogger())
		_, err := service.Login(ctx, "ghost@example.com", "strongpassword")

		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("деактивированная учетная запись", func(t *testing.T) {
		inactive := *activeUser
		inactive.IsActive = false

		repo := new(UserRepoMock)
		repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&inactive, nil)

		service := auth.NewAuthService(repo, newMaker(), newLogger())
		_, err := service.Login(ctx, "user@example.com", "strongpassword")

		assert.ErrorIs(t, err, auth.ErrInactiveAccount)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	maker := newMaker()

	t.Run("refresh-токен выдает новую пару", func(t *testing.T) {
		refresh, err := maker.GenerateRefreshToken("user@example.com", models.RoleUser, "uid-1", false)
		require.NoError(t, err)

		service := auth.NewAuthService(new(UserRepoMock), maker, newLogger())
		pair, err := service.Refresh(ctx, refresh)

		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)

		claims, err := maker.ParseToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", claims.UserUID)
		assert.Equal(t, "access", claims.TokenType)
	})

	t.Run("access-токен не принимается вместо refresh", func(t *testing.T) {
		access, err := maker.GenerateToken("user@example.com", models.RoleUser, "uid-1", false)
		require.NoError(t, err)

		service := auth.NewAuthService(new(UserRepoMock), maker, newLogger())
		_, err = service.Refresh(ctx, access)

		assert.ErrorIs(t, err, auth.ErrNotRefreshToken)
	})

	t.Run("мусор вместо токена", func(t *testing.T) {
		service := auth.NewAuthService(new(UserRepoMock), maker, newLogger())
		_, err := service.Refresh(ctx, "not-a-token")
		assert.Error(t, err)
	})
}
