// Package scheduler содержит фоновую задачу деактивации «спящих»
// пользователей: учётные записи без входа дольше заданного срока
// помечаются неактивными и теряют доступ к платформе.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/kopstant/lms-backend/internal/lib/sl"
)

// UserRepository определяет массовую деактивацию пользователей.
type UserRepository interface {
	DeactivateDormantUsers(ctx context.Context, cutoff time.Time) (int, error)
}

// SchedulerService выполняет периодические задачи обслуживания учётных записей.
type SchedulerService struct {
	repo        UserRepository
	dormantDays int
	log         *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo UserRepository, dormantDays int, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:        repo,
		dormantDays: dormantDays,
		log:         log,
	}
}

// DeactivateDormantUsers деактивирует пользователей, не входивших дольше
// настроенного числа дней. Пользователи без единого входа не трогаются:
// у них last_login отсутствует. Возвращает число деактивированных.
func (s *SchedulerService) DeactivateDormantUsers(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.dormantDays)

	count, err := s.repo.DeactivateDormantUsers(ctx, cutoff)
	if err != nil {
		s.log.Error("failed to deactivate dormant users", sl.Err(err))
		return 0, err
	}
	s.log.Info("dormant users deactivated",
		slog.Int("count", count), slog.Time("cutoff", cutoff))
	return count, nil
}
