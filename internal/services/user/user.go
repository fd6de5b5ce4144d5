// Package user содержит бизнес-логику работы с профилями пользователей:
// чтение профиля, обновление своих данных и список пользователей.
package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// ErrForbidden доступ к профилю запрещён.
var ErrForbidden = errors.New("forbidden")

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userUID, username, phone, city string) (int, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// Profile публичное представление пользователя: без хэша пароля.
type Profile struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	Phone    string `json:"phone,omitempty"`
	City     string `json:"city,omitempty"`
}

// UserService реализует бизнес-логику работы с профилями.
type UserService struct {
	repo   UserRepository
	engine *authz.Engine
	log    *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, engine *authz.Engine, log *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		engine: engine,
		log:    log,
	}
}

func toProfile(u *models.User) *Profile {
	return &Profile{
		UID:      u.UID,
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		IsActive: u.IsActive,
		Phone:    u.Phone,
		City:     u.City,
	}
}

// Read возвращает профиль пользователя. Профили видны всем
// аутентифицированным пользователям.
func (s *UserService) Read(ctx context.Context, actor authz.Actor, userUID string) (*Profile, error) {
	if !s.engine.Allow(actor, authz.ActionRetrieve, false) {
		return nil, ErrForbidden
	}
	u, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return toProfile(u), nil
}

// Update обновляет профиль пользователя. Разрешено владельцу профиля
// и модератору.
func (s *UserService) Update(ctx context.Context, actor authz.Actor, userUID string, req models.DummyUserUpdate) (int, error) {
	if !s.engine.Allow(actor, authz.ActionUpdate, false) {
		return 0, ErrForbidden
	}
	u, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return 0, err
	}
	if !s.engine.AllowObject(actor, authz.ActionUpdate, u.UID) {
		return 0, ErrForbidden
	}

	count, err := s.repo.UpdateUserProfile(ctx, userUID, req.Username, req.Phone, req.City)
	if err != nil {
		return 0, err
	}
	s.log.Info("updated user profile", slog.String("uid", userUID))
	return count, nil
}

// List возвращает страницу пользователей без хэшей паролей.
func (s *UserService) List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*Profile, error) {
	if !s.engine.Allow(actor, authz.ActionList, false) {
		return nil, ErrForbidden
	}
	users, err := s.repo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	result := make([]*Profile, 0, len(users))
	for _, u := range users {
		result = append(result, toProfile(u))
	}
	return result, nil
}

// IsNotFound сообщает, что ошибка означает отсутствие пользователя.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
