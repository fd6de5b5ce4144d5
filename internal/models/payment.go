package models

import "time"

// Способы оплаты.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodStripe   = "stripe"
)

// Payment представляет платёж за курс или урок. Сумма хранится в целых
// единицах валюты; перевод в минорные единицы происходит только на границе
// вызова платёжного провайдера. Ссылки на курс и урок становятся NULL,
// если целевая запись удалена.
type Payment struct {
	ID              int
	UserUID         *string // Плательщик, NULL если пользователь удалён
	CourseID        *int    // Оплаченный курс
	LessonID        *int    // Оплаченный урок
	Amount          int     // Сумма в целых единицах валюты
	PaymentMethod   string
	StripeProductID string // Идентификатор продукта у провайдера
	StripePriceID   string // Идентификатор цены у провайдера
	StripeSessionID string // Идентификатор сессии оплаты
	PaymentLink     string // Ссылка на оплату
	IsPaid          bool
	CreatedAt       time.Time
}

// DummyPayment используется для приёма данных платежа из JSON-запроса.
// Должен быть указан курс или урок, это проверяет отдельный валидатор записи.
type DummyPayment struct {
	Amount        int    `json:"amount" validate:"required,gt=0"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash transfer stripe"`
	CourseID      *int   `json:"course_id,omitempty" validate:"omitempty,gt=0"`
	LessonID      *int   `json:"lesson_id,omitempty" validate:"omitempty,gt=0"`
}
