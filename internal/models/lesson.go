package models

import "time"

// Lesson представляет урок внутри курса. Ссылка на видео проходит
// валидацию: допускаются только ссылки с youtube.com.
type Lesson struct {
	ID          int
	Title       string
	Description string
	VideoURL    string
	CourseID    int    // Курс, которому принадлежит урок
	OwnerUID    string // Владелец урока
	CreatedAt   time.Time
}

// DummyLesson используется для приёма данных урока из JSON-запроса.
type DummyLesson struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	VideoURL    string `json:"video_url" validate:"required"`
	CourseID    int    `json:"course_id" validate:"required,gt=0"`
}
