// Package paymentsuccess реализует HTTP-обработчик возврата пользователя
// со страницы успешной оплаты. Статус платежа подтверждается запросом
// к провайдеру, а не доверяется факту перехода по ссылке.
package paymentsuccess

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kopstant/lms-backend/internal/http/response"
	"github.com/kopstant/lms-backend/internal/lib/sl"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/services/payment"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// Handler обрабатывает возврат со страницы успешной оплаты.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики платежей
}

// Service описывает интерфейс подтверждения платежа.
type Service interface {
	Confirm(ctx context.Context, paymentID int) (*models.Payment, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтверждение оплаты
// @Description Сверяет статус сессии у провайдера и помечает платеж оплаченным.
// @Tags Payments
// @Produce  json
// @Param id path int true "ID платежа"
// @Success 200 {object} map[string]any "Статус платежа"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Платеж не найден"
// @Failure 502 {object} response.ErrorResponse "Сбой платёжного провайдера"
// @Router /payments/success/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.success"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	res, err := h.service.Confirm(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		case errors.Is(err, payment.ErrNoCheckoutSession):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("payment has no checkout session"))
		default:
			log.Error("failed to confirm payment", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("could not confirm payment"))
		}
		return
	}

	log.Info("payment status checked",
		slog.Int("payment_id", id), slog.Bool("is_paid", res.IsPaid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment_id": res.ID,
		"is_paid":    res.IsPaid,
	}))
}
