// Package validatex содержит именованные валидаторы записей с единой
// сигнатурой. В отличие от тегов структурной валидации, эти функции
// проверяют правила уровня записи: допустимость ссылки на видео,
// обязательность курса или урока в платеже.
package validatex

import (
	"errors"
	"regexp"
	"strings"

	"github.com/kopstant/lms-backend/internal/models"
)

// Ошибки валидации записей.
var (
	ErrBadVideoURL      = errors.New("url неверный")
	ErrNotYoutubeURL    = errors.New("ссылка на видео только с youtube.com")
	ErrNoPaymentTarget  = errors.New("необходимо указать курс или урок")
	ErrNotPositiveValue = errors.New("сумма должна быть положительной")
)

var urlRe = regexp.MustCompile(`^(https?://)?([\w-]{1,32}\.[\w-]{1,32})[^\s@]*$`)

// LessonVideoURL проверяет, что ссылка на видео урока синтаксически корректна
// и ведёт на youtube.com.
func LessonVideoURL(req models.DummyLesson) error {
	if req.VideoURL == "" || !urlRe.MatchString(req.VideoURL) {
		return ErrBadVideoURL
	}
	if !strings.Contains(req.VideoURL, "youtube.com") {
		return ErrNotYoutubeURL
	}
	return nil
}

// PaymentTarget проверяет, что в платеже указан курс или урок.
func PaymentTarget(req models.DummyPayment) error {
	if req.CourseID == nil && req.LessonID == nil {
		return ErrNoPaymentTarget
	}
	return nil
}

// PaymentAmount проверяет, что сумма платежа положительная.
func PaymentAmount(req models.DummyPayment) error {
	if req.Amount <= 0 {
		return ErrNotPositiveValue
	}
	return nil
}
