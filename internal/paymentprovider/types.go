package paymentprovider

// Product ответ провайдера на создание продукта.
type Product struct {
	ID string `json:"id"`
}

// Price ответ провайдера на создание цены.
type Price struct {
	ID         string `json:"id"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
}

// Session сессия оплаты у провайдера. PaymentStatus принимает значения
// "unpaid", "paid" или "no_payment_required".
type Session struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

// SessionParams параметры создания сессии оплаты.
type SessionParams struct {
	PriceID       string
	Quantity      int
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	PaymentID     string // Локальный идентификатор платежа, уходит в metadata
}

// apiError тело ошибки провайдера.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
