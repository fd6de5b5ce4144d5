// Package course содержит бизнес-логику для управления курсами:
// CRUD с проверкой прав доступа, кеширование чтений и публикация
// уведомления подписчикам при обновлении курса.
package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/lib/sl"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// ErrForbidden доступ к курсу запрещён.
var ErrForbidden = errors.New("forbidden")

// CourseRepository определяет методы для работы с курсами в хранилище.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course models.Course) (int, error)
	ReadCourse(ctx context.Context, id int) (*models.Course, error)
	UpdateCourse(ctx context.Context, course models.Course, id int) (int, error)
	RemoveCourse(ctx context.Context, id int) (int, error)
	ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, error)
	CountCourseLessons(ctx context.Context, courseID int) (int, error)
	SubscriptionExists(ctx context.Context, ownerUID string, courseID int) (bool, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// EventPublisher публикует событие обновления курса. Публикация не блокирует
// запрос и её результат запросом не наблюдается.
type EventPublisher interface {
	PublishCourseUpdated(note models.CourseUpdatedNote) error
}

// CourseService реализует бизнес-логику работы с курсами.
type CourseService struct {
	repo   CourseRepository
	cache  Cache
	engine *authz.Engine
	events EventPublisher
	log    *slog.Logger
}

// NewCourseService создает новый экземпляр CourseService.
func NewCourseService(repo CourseRepository, cache Cache, engine *authz.Engine, events EventPublisher, log *slog.Logger) *CourseService {
	return &CourseService{
		repo:   repo,
		cache:  cache,
		engine: engine,
		events: events,
		log:    log,
	}
}

// Create создает новый курс, владельцем становится вызывающий.
func (s *CourseService) Create(ctx context.Context, actor authz.Actor, req models.DummyCourse) (int, error) {
	if !s.engine.Allow(actor, authz.ActionCreate, false) {
		return 0, ErrForbidden
	}

	course := models.Course{
		Title:       req.Title,
		Description: req.Description,
		OwnerUID:    actor.UserUID,
	}
	id, err := s.repo.CreateCourse(ctx, course)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new course", slog.Int("id", id))
	return id, nil
}

// Read возвращает курс с количеством уроков и признаком подписки вызывающего,
// используя кеш для самого курса.
func (s *CourseService) Read(ctx context.Context, actor authz.Actor, id int) (*models.CourseInfo, error) {
	if !s.engine.Allow(actor, authz.ActionRetrieve, false) {
		return nil, ErrForbidden
	}

	course, err := s.readCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.engine.AllowObject(actor, authz.ActionRetrieve, course.OwnerUID) {
		return nil, ErrForbidden
	}

	lessonsCount, err := s.repo.CountCourseLessons(ctx, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.repo.SubscriptionExists(ctx, actor.UserUID, id)
	if err != nil {
		return nil, err
	}
	return &models.CourseInfo{
		Course:       *course,
		LessonsCount: lessonsCount,
		IsSubscribed: subscribed,
	}, nil
}

// Update обновляет курс и публикует уведомление подписчикам.
func (s *CourseService) Update(ctx context.Context, actor authz.Actor, id int, req models.DummyCourse) (int, error) {
	if !s.engine.Allow(actor, authz.ActionUpdate, false) {
		return 0, ErrForbidden
	}
	course, err := s.repo.ReadCourse(ctx, id)
	if err != nil {
		return 0, err
	}
	if !s.engine.AllowObject(actor, authz.ActionUpdate, course.OwnerUID) {
		return 0, ErrForbidden
	}

	res, err := s.repo.UpdateCourse(ctx, models.Course{
		Title:       req.Title,
		Description: req.Description,
	}, id)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Invalidate(s.cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate course cache", sl.Err(err))
	}

	// рассылка подписчикам уходит через очередь, запрос её не ждёт
	if err := s.events.PublishCourseUpdated(models.CourseUpdatedNote{
		CourseID: id,
		Title:    req.Title,
	}); err != nil {
		s.log.Error("failed to publish course update note", sl.Err(err))
	}
	return res, nil
}

// Remove удаляет курс; уроки удаляются каскадно на уровне хранилища.
func (s *CourseService) Remove(ctx context.Context, actor authz.Actor, id int) (int, error) {
	if !s.engine.Allow(actor, authz.ActionDestroy, false) {
		return 0, ErrForbidden
	}
	course, err := s.repo.ReadCourse(ctx, id)
	if err != nil {
		return 0, err
	}
	if !s.engine.AllowObject(actor, authz.ActionDestroy, course.OwnerUID) {
		return 0, ErrForbidden
	}

	if err := s.cache.Invalidate(s.cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate course cache", sl.Err(err))
	}
	return s.repo.RemoveCourse(ctx, id)
}

// List возвращает список курсов с пагинацией.
func (s *CourseService) List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Course, error) {
	if !s.engine.Allow(actor, authz.ActionList, false) {
		return nil, ErrForbidden
	}
	return s.repo.ListCourses(ctx, limit, offset)
}

func (s *CourseService) readCourse(ctx context.Context, id int) (*models.Course, error) {
	var cached *models.Course
	cacheKey := s.cacheKey(id)
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read course from cache", sl.Err(err))
	}
	if found && cached != nil {
		return cached, nil
	}

	course, err := s.repo.ReadCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey, course, time.Hour); err != nil {
		s.log.Warn("failed to cache course", slog.String("key", cacheKey), sl.Err(err))
	}
	return course, nil
}

func (s *CourseService) cacheKey(id int) string {
	return fmt.Sprintf("course:%d", id)
}

// IsNotFound сообщает, что ошибка означает отсутствие курса.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
