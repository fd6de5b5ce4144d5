// Package auth содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kopstant/lms-backend/internal/lib/jwt"
	"github.com/kopstant/lms-backend/internal/lib/password"
	"github.com/kopstant/lms-backend/internal/lib/sl"
	"github.com/kopstant/lms-backend/internal/models"
)

// Ошибки сервиса аутентификации.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is deactivated")
	ErrNotRefreshToken    = errors.New("not a refresh token")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// TouchLastLogin обновляет время последнего входа.
	TouchLastLogin(ctx context.Context, userUID string, at time.Time) error
}

// TokenPair пара токенов, выдаваемая при входе и обновлении.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleUser, // дефолтная роль при регистрации
		IsActive:     true,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя, обновляет время последнего входа
// и генерирует пару токенов.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	if err := s.users.TouchLastLogin(ctx, user.UID, time.Now().UTC()); err != nil {
		// вход не блокируем, но без last_login пользователь попадёт под деактивацию
		s.log.Warn("failed to touch last_login", sl.Err(err))
	}

	return s.issuePair(user.Email, user.Role, user.UID, user.IsStaff)
}

// Refresh проверяет refresh-токен и выдаёт новую пару токенов.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrNotRefreshToken
	}
	return s.issuePair(claims.Email, claims.Role, claims.UserUID, claims.IsStaff)
}

// ValidateToken проверяет access-токен и возвращает информацию о пользователе.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) issuePair(email, role, uid string, isStaff bool) (*TokenPair, error) {
	access, err := s.jwtMaker.GenerateToken(email, role, uid, isStaff)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(email, role, uid, isStaff)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         role,
	}, nil
}
