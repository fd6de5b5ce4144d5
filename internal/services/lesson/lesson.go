// Package lesson содержит бизнес-логику для управления уроками: CRUD с
// проверкой прав доступа, валидацией ссылки на видео и проверкой владения
// курсом при создании урока.
package lesson

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/lib/validatex"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// Ошибки сервиса уроков.
var (
	ErrForbidden      = errors.New("forbidden")
	ErrCourseNotFound = errors.New("course not found")
	ErrNotCourseOwner = errors.New("not the course owner")
)

// LessonRepository определяет методы для работы с уроками в хранилище.
type LessonRepository interface {
	CreateLesson(ctx context.Context, lesson models.Lesson) (int, error)
	ReadLesson(ctx context.Context, id int) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, lesson models.Lesson, id int) (int, error)
	RemoveLesson(ctx context.Context, id int) (int, error)
	ListLessons(ctx context.Context, limit, offset int) ([]*models.Lesson, error)
	ReadCourse(ctx context.Context, id int) (*models.Course, error)
}

// LessonService реализует бизнес-логику работы с уроками.
type LessonService struct {
	repo   LessonRepository
	engine *authz.Engine
	log    *slog.Logger
}

// NewLessonService создает новый экземпляр LessonService.
func NewLessonService(repo LessonRepository, engine *authz.Engine, log *slog.Logger) *LessonService {
	return &LessonService{
		repo:   repo,
		engine: engine,
		log:    log,
	}
}

// Create создает новый урок. Курс должен существовать и принадлежать
// вызывающему; ссылка на видео проходит валидацию.
func (s *LessonService) Create(ctx context.Context, actor authz.Actor, req models.DummyLesson) (int, error) {
	if !s.engine.Allow(actor, authz.ActionCreate, false) {
		return 0, ErrForbidden
	}
	if err := validatex.LessonVideoURL(req); err != nil {
		return 0, err
	}

	course, err := s.repo.ReadCourse(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrCourseNotFound
		}
		return 0, err
	}
	if course.OwnerUID != actor.UserUID {
		return 0, ErrNotCourseOwner
	}

	lesson := models.Lesson{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		CourseID:    req.CourseID,
		OwnerUID:    actor.UserUID,
	}
	id, err := s.repo.CreateLesson(ctx, lesson)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new lesson", slog.Int("id", id))
	return id, nil
}

// Read возвращает урок по ID.
func (s *LessonService) Read(ctx context.Context, actor authz.Actor, id int) (*models.Lesson, error) {
	if !s.engine.Allow(actor, authz.ActionRetrieve, false) {
		return nil, ErrForbidden
	}
	lesson, err := s.repo.ReadLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.engine.AllowObject(actor, authz.ActionRetrieve, lesson.OwnerUID) {
		return nil, ErrForbidden
	}
	return lesson, nil
}

// Update обновляет урок. Доступно владельцу и модератору.
func (s *LessonService) Update(ctx context.Context, actor authz.Actor, id int, req models.DummyLesson) (int, error) {
	if !s.engine.Allow(actor, authz.ActionUpdate, false) {
		return 0, ErrForbidden
	}
	if err := validatex.LessonVideoURL(req); err != nil {
		return 0, err
	}
	lesson, err := s.repo.ReadLesson(ctx, id)
	if err != nil {
		return 0, err
	}
	if !s.engine.AllowObject(actor, authz.ActionUpdate, lesson.OwnerUID) {
		return 0, ErrForbidden
	}

	return s.repo.UpdateLesson(ctx, models.Lesson{
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
	}, id)
}

// Remove удаляет урок. Доступно только владельцу.
func (s *LessonService) Remove(ctx context.Context, actor authz.Actor, id int) (int, error) {
	if !s.engine.Allow(actor, authz.ActionDestroy, false) {
		return 0, ErrForbidden
	}
	lesson, err := s.repo.ReadLesson(ctx, id)
	if err != nil {
		return 0, err
	}
	if !s.engine.AllowObject(actor, authz.ActionDestroy, lesson.OwnerUID) {
		return 0, ErrForbidden
	}
	return s.repo.RemoveLesson(ctx, id)
}

// List возвращает список уроков с пагинацией. Просмотр списка уроков публичный.
func (s *LessonService) List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Lesson, error) {
	if !s.engine.Allow(actor, authz.ActionList, true) {
		return nil, ErrForbidden
	}
	return s.repo.ListLessons(ctx, limit, offset)
}
