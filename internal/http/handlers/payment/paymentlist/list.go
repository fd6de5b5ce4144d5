// Package paymentlist реализует HTTP-обработчик списка платежей вызывающего
// с фильтром по способу оплаты и пагинацией.
package paymentlist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/http/middlewarectx"
	"github.com/kopstant/lms-backend/internal/http/pagination"
	"github.com/kopstant/lms-backend/internal/http/response"
	"github.com/kopstant/lms-backend/internal/lib/sl"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/services/payment"
)

// Handler обрабатывает HTTP-запросы списка платежей.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики платежей
}

// Service описывает интерфейс бизнес-логики списка платежей.
type Service interface {
	List(ctx context.Context, actor authz.Actor, method *string, limit, offset int) ([]*models.Payment, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список платежей
// @Description Возвращает платежи вызывающего, от новых к старым.
// @Tags Payments
// @Produce  json
// @Param payment_method query string false "Фильтр по способу оплаты" Enums(cash, transfer, stripe)
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список платежей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Security BearerAuth
// @Router /payments/list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := pagination.Parse(r)

	var method *string
	if raw := r.URL.Query().Get("payment_method"); raw != "" {
		method = &raw
	}

	actor := middlewarectx.ActorFromContext(r.Context())
	payments, err := h.service.List(r.Context(), actor, method, limit, offset)
	if err != nil {
		if errors.Is(err, payment.ErrForbidden) {
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list payments"))
		return
	}

	log.Info("payments listed", slog.Int("count", len(payments)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payments": payments,
		"limit":    limit,
		"offset":   offset,
	}))
}
