package models

import "time"

// Subscription представляет подписку пользователя на курс.
// Пара (owner_uid, course_id) уникальна: существование записи означает
// "подписан", отдельного флага нет.
type Subscription struct {
	ID        int
	OwnerUID  string
	CourseID  int
	CreatedAt time.Time
}

// DummySubscriptionToggle используется для приёма запроса на переключение подписки.
type DummySubscriptionToggle struct {
	CourseID int `json:"course_id" validate:"required,gt=0"`
}
