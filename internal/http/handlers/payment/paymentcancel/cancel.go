// Package paymentcancel реализует HTTP-обработчик возврата пользователя
// со страницы отмены оплаты. Платёж не удаляется: оплату можно завершить
// позже по той же ссылке.
package paymentcancel

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
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// Handler обрабатывает возврат со страницы отмены оплаты.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики платежей
}

// Service описывает интерфейс обработки отмены оплаты.
type Service interface {
	Cancel(ctx context.Context, paymentID int) (*models.Payment, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отмена оплаты
// @Description Фиксирует возврат со страницы отмены. Платеж остаётся неоплаченным.
// @Tags Payments
// @Produce  json
// @Param id path int true "ID платежа"
// @Success 200 {object} map[string]any "Статус платежа"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Платеж не найден"
// @Router /payments/cancel/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.cancel"

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

	res, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
			return
		}
		log.Error("failed to handle payment cancel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not handle payment cancel"))
		return
	}

	log.Info("payment checkout cancelled", slog.Int("payment_id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment_id": res.ID,
		"is_paid":    res.IsPaid,
		"status":     "cancelled",
	}))
}
