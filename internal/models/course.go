package models

import "time"

// Course представляет курс. Каждый курс принадлежит ровно одному
// пользователю; при удалении курса каскадно удаляются его уроки.
type Course struct {
	ID          int
	Title       string
	Description string
	OwnerUID    string // Владелец курса
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CourseInfo возвращается при чтении курса: сам курс, количество уроков
// и признак подписки текущего пользователя.
type CourseInfo struct {
	Course       Course `json:"course"`
	LessonsCount int    `json:"lessons_count"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// DummyCourse используется для приёма данных курса из JSON-запроса.
type DummyCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// CourseUpdatedNote сообщение о том, что курс обновлён. Публикуется в
// очередь уведомлений, воркер рассылает письма подписчикам.
type CourseUpdatedNote struct {
	CourseID int    `json:"course_id"`
	Title    string `json:"title"`
}
