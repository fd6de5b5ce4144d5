// Package models содержит доменные структуры учебной платформы:
// пользователей, курсы, уроки, подписки на курсы и платежи,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Роли пользователя. Модераторская группа даёт право читать и редактировать
// чужие объекты, но не создавать и не удалять их.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
)

// User представляет зарегистрированного пользователя системы.
// Email уникален и используется как логин. LastLogin может быть nil —
// пользователь ещё ни разу не входил.
type User struct {
	UID          string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта (логин)
	Username     string     // Имя пользователя
	PasswordHash string     // Хэш пароля пользователя
	Role         string     // Роль пользователя, moderator или user
	IsStaff      bool       // Флаг сотрудника, также даёт модераторские права
	IsActive     bool       // Активна ли учётная запись
	Phone        string     // Телефон (опционально)
	City         string     // Город (опционально)
	LastLogin    *time.Time // Время последнего входа
	CreatedAt    time.Time
}

// DummyRegister используется для приёма данных регистрации из JSON-запроса.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных входа из JSON-запроса.
type DummyLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DummyUserUpdate используется для приёма обновления профиля из JSON-запроса.
type DummyUserUpdate struct {
	Username string `json:"username" validate:"required,alphanum"`
	Phone    string `json:"phone,omitempty" validate:"omitempty"`
	City     string `json:"city,omitempty" validate:"omitempty"`
}
