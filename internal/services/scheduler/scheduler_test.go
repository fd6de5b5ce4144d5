package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) DeactivateDormantUsers(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestDeactivateDormantUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("деактивация с порогом по настроенному числу дней", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("DeactivateDormantUsers", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
			expected := time.Now().AddDate(0, 0, -30)
			return cutoff.Sub(expected).Abs() < time.Minute
		})).Return(3, nil)

		service := NewSchedulerService(repo, 30, newNoopLogger())
		count, err := service.DeactivateDormantUsers(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 3, count)
		repo.AssertExpectations(t)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("DeactivateDormantUsers", mock.Anything, mock.AnythingOfType("time.Time")).
			Return(0, errors.New("db error"))

		service := NewSchedulerService(repo, 30, newNoopLogger())
		_, err := service.DeactivateDormantUsers(ctx)

		assert.Error(t, err)
	})
}
