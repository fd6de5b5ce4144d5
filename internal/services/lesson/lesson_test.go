package lesson

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/lib/validatex"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// Мок для LessonRepository
type LessonRepoMock struct {
	mock.Mock
}

func (m *LessonRepoMock) CreateLesson(ctx context.Context, lesson models.Lesson) (int, error) {
	args := m.Called(ctx, lesson)
	return args.Int(0), args.Error(1)
}

func (m *LessonRepoMock) ReadLesson(ctx context.Context, id int) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *LessonRepoMock) UpdateLesson(ctx context.Context, lesson models.Lesson, id int) (int, error) {
	args := m.Called(ctx, lesson, id)
	return args.Int(0), args.Error(1)
}

func (m *LessonRepoMock) RemoveLesson(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *LessonRepoMock) ListLessons(ctx context.Context, limit, offset int) ([]*models.Lesson, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lesson), args.Error(1)
}

func (m *LessonRepoMock) ReadCourse(ctx context.Context, id int) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func newTestService(repo *LessonRepoMock) *LessonService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewLessonService(repo, authz.New(authz.Policy{}), logger)
}

func validRequest() models.DummyLesson {
	return models.DummyLesson{
		Title:       "Введение",
		Description: "Первый урок",
		VideoURL:    "https://youtube.com/watch?v=abc123",
		CourseID:    5,
	}
}

func TestCreateLesson(t *testing.T) {
	ctx := context.Background()
	owner := authz.ActorFromUser("owner-uid", "owner@example.com", "user", false)

	t.Run("успешное создание урока", func(t *testing.T) {
		repo := new(LessonRepoMock)
		repo.On("ReadCourse", mock.Anything, 5).Return(&models.Course{ID: 5, OwnerUID: "owner-uid"}, nil)
		repo.On("CreateLesson", mock.Anything, mock.MatchedBy(func(l models.Lesson) bool {
			return l.CourseID == 5 && l.OwnerUID == "owner-uid"
		})).Return(1, nil)

		id, err := newTestService(repo).Create(ctx, owner, validRequest())

		assert.NoError(t, err)
		assert.Equal(t, 1, id)
		repo.AssertExpectations(t)
	})

	t.Run("ссылка не на youtube", func(t *testing.T) {
		req := validRequest()
		req.VideoURL = "https://vimeo.com/123"

		_, err := newTestService(new(LessonRepoMock)).Create(ctx, owner, req)

		assert.ErrorIs(t, err, validatex.ErrNotYoutubeURL)
	})

	t.Run("некорректная ссылка на видео", func(t *testing.T) {
		req := validRequest()
		req.VideoURL = "не ссылка"

		_, err := newTestService(new(LessonRepoMock)).Create(ctx, owner, req)

		assert.ErrorIs(t, err, validatex.ErrBadVideoURL)
	})

	t.Run("курс не существует", func(t *testing.T) {
		repo := new(LessonRepoMock)
		repo.On("ReadCourse", mock.Anything, 5).Return(nil, repository.ErrNotFound)

		_, err := newTestService(repo).Create(ctx, owner, validRequest())

		assert.ErrorIs(t, err, ErrCourseNotFound)
	})

	t.Run("урок в чужом курсе", func(t *testing.T) {
		repo := new(LessonRepoMock)
		repo.On("ReadCourse", mock.Anything, 5).Return(&models.Course{ID: 5, OwnerUID: "other-uid"}, nil)

		_, err := newTestService(repo).Create(ctx, owner, validRequest())

		assert.ErrorIs(t, err, ErrNotCourseOwner)
	})

	t.Run("аноним не может создать урок", func(t *testing.T) {
		_, err := newTestService(new(LessonRepoMock)).Create(ctx, authz.Actor{}, validRequest())
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestUpdateLesson(t *testing.T) {
	ctx := context.Background()
	stored := &models.Lesson{ID: 3, CourseID: 5, OwnerUID: "owner-uid"}

	t.Run("владелец обновляет урок", func(t *testing.T) {
		repo := new(LessonRepoMock)
		repo.On("ReadLesson", mock.Anything, 3).Return(stored, nil)
		repo.On("UpdateLesson", mock.Anything, mock.AnythingOfType("models.Lesson"), 3).Return(1, nil)

		owner := authz.ActorFromUser("owner-uid", "owner@example.com", "user", false)
		count, err := newTestService(repo).Update(ctx, owner, 3, validRequest())

		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("чужой пользователь не может обновить урок", func(t *testing.T) {
		repo := new(LessonRepoMock)
		repo.On("ReadLesson", mock.Anything, 3).Return(stored, nil)

		stranger := authz.ActorFromUser("other-uid", "other@example.com", "user", false)
		_, err := newTestService(repo).Update(ctx, stranger, 3, validRequest())

		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestRemoveLesson(t *testing.T) {
	ctx := context.Background()
	stored := &models.Lesson{ID: 3, CourseID: 5, OwnerUID: "owner-uid"}

	t.Run("владелец удаляет урок", func(t *testing.T) {
		repo := new(LessonRepoMock)
		repo.On("ReadLesson", mock.Anything, 3).Return(stored, nil)
		repo.On("RemoveLesson", mock.Anything, 3).Return(1, nil)

		owner := authz.ActorFromUser("owner-uid", "owner@example.com", "user", false)
		count, err := newTestService(repo).Remove(ctx, owner, 3)

		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("модератор не может удалить чужой урок", func(t *testing.T) {
		repo := new(LessonRepoMock)
		repo.On("ReadLesson", mock.Anything, 3).Return(stored, nil)

		moderator := authz.ActorFromUser("mod-uid", "mod@example.com", "moderator", false)
		_, err := newTestService(repo).Remove(ctx, moderator, 3)

		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestListLessons(t *testing.T) {
	ctx := context.Background()

	t.Run("аноним видит список уроков", func(t *testing.T) {
		repo := new(LessonRepoMock)
		repo.On("ListLessons", mock.Anything, 10, 0).Return([]*models.Lesson{{ID: 1}}, nil)

		lessons, err := newTestService(repo).List(ctx, authz.Actor{}, 10, 0)

		assert.NoError(t, err)
		assert.Len(t, lessons, 1)
	})
}
