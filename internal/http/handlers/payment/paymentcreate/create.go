// Package paymentcreate реализует HTTP-обработчик создания платежа.
//
// Для способа оплаты stripe сразу после создания черновика инициируется
// сессия оплаты у провайдера и в ответ попадает ссылка на оплату.
// Для наличных и перевода платёж фиксируется без обращения к провайдеру.
package paymentcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/http/middlewarectx"
	"github.com/kopstant/lms-backend/internal/http/response"
	"github.com/kopstant/lms-backend/internal/lib/sl"
	"github.com/kopstant/lms-backend/internal/lib/validatex"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/services/payment"
)

// Handler обрабатывает HTTP-запросы создания платежа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики платежей
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания платежа.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, req models.DummyPayment) (int, error)
	InitiateCheckout(ctx context.Context, actor authz.Actor, paymentID int, customerEmail string) (*payment.CheckoutResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать платеж
// @Description Создает платеж за курс или урок. Для stripe возвращает ссылку на оплату.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.DummyPayment true "Данные платежа"
// @Success 200 {object} map[string]any "Платеж создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Курс или урок не найден"
// @Failure 409 {object} response.ErrorResponse "Оплата уже инициируется"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 502 {object} response.ErrorResponse "Сбой платёжного провайдера"
// @Security BearerAuth
// @Router /payments/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPayment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	actor := middlewarectx.ActorFromContext(r.Context())
	if !actor.Authenticated {
		log.Error("actor not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		switch {
		case errors.Is(err, validatex.ErrNoPaymentTarget), errors.Is(err, validatex.ErrNotPositiveValue):
			log.Error("invalid payment", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case payment.IsNotFound(err):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course or lesson not found"))
		default:
			log.Error("failed to create payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create payment"))
		}
		return
	}
	log.Info("payment draft created", slog.Int("id", id))

	if req.PaymentMethod != models.PaymentMethodStripe {
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"payment_id": id,
			"status":     "created",
		}))
		return
	}

	result, err := h.service.InitiateCheckout(r.Context(), actor, id, actor.Email)
	if err != nil {
		if errors.Is(err, payment.ErrCheckoutInProgress) {
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("checkout already in progress"))
			return
		}
		log.Error("failed to initiate checkout", sl.Err(err))
		w.WriteHeader(http.StatusBadGateway)
		render.JSON(w, r, response.Error("payment provider failure"))
		return
	}

	log.Info("checkout initiated",
		slog.Int("payment_id", result.PaymentID),
		slog.String("session_id", result.SessionID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment_id":   result.PaymentID,
		"payment_link": result.PaymentLink,
		"status":       "created",
	}))
}
