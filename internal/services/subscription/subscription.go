// Package subscription содержит бизнес-логику подписок на курсы.
// Подписка переключается: если записи нет — создаётся, если есть — удаляется.
package subscription

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// ErrCourseNotFound курс с указанным ID не существует.
var ErrCourseNotFound = errors.New("course not found")

// Тексты ответов о переключении подписки.
const (
	MessageSubscribed   = "Подписка добавлена"
	MessageUnsubscribed = "Подписка удалена"
)

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	CourseExists(ctx context.Context, courseID int) (bool, error)
	SubscriptionExists(ctx context.Context, ownerUID string, courseID int) (bool, error)
	CreateSubscription(ctx context.Context, ownerUID string, courseID int) (int, error)
	RemoveSubscription(ctx context.Context, ownerUID string, courseID int) (int, error)
}

// SubscriptionService реализует переключение подписки.
type SubscriptionService struct {
	repo SubscriptionRepository
	log  *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo: repo,
		log:  log,
	}
}

// Toggle переключает подписку пользователя на курс и возвращает сообщение
// о выполненном действии. Два последовательных вызова возвращают состояние
// подписки к исходному.
func (s *SubscriptionService) Toggle(ctx context.Context, ownerUID string, courseID int) (string, error) {
	exists, err := s.repo.CourseExists(ctx, courseID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrCourseNotFound
	}

	subscribed, err := s.repo.SubscriptionExists(ctx, ownerUID, courseID)
	if err != nil {
		return "", err
	}

	if subscribed {
		if _, err := s.repo.RemoveSubscription(ctx, ownerUID, courseID); err != nil {
			return "", err
		}
		s.log.Info("subscription removed", slog.Int("course_id", courseID))
		return MessageUnsubscribed, nil
	}

	if _, err := s.repo.CreateSubscription(ctx, ownerUID, courseID); err != nil {
		return "", err
	}
	s.log.Info("subscription added", slog.Int("course_id", courseID))
	return MessageSubscribed, nil
}

// IsNotFound сообщает, что ошибка означает отсутствие курса.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCourseNotFound) || errors.Is(err, repository.ErrNotFound)
}
