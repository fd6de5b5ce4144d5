// Package toggle реализует HTTP-обработчик переключения подписки на курс.
//
// Повторный запрос отменяет действие предыдущего: подписка либо создаётся,
// либо удаляется. Ответ содержит сообщение о выполненном действии.
package toggle

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/kopstant/lms-backend/internal/http/middlewarectx"
	"github.com/kopstant/lms-backend/internal/http/response"
	"github.com/kopstant/lms-backend/internal/lib/sl"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/services/subscription"
)

// Handler обрабатывает HTTP-запросы переключения подписки.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики подписок
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики переключения подписки.
type Service interface {
	Toggle(ctx context.Context, ownerUID string, courseID int) (string, error)
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
// @Summary Переключить подписку на курс
// @Description Подписывает на курс или отписывает от него, если подписка уже есть.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.DummySubscriptionToggle true "ID курса"
// @Success 200 {object} map[string]any "Сообщение о действии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} map[string]any "Курс не найден"
// @Security BearerAuth
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.toggle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySubscriptionToggle
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

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

	message, err := h.service.Toggle(r.Context(), actor.UserUID, req.CourseID)
	if err != nil {
		if subscription.IsNotFound(err) {
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, map[string]any{
				"error": "Course does not find.",
			})
			return
		}
		log.Error("failed to toggle subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not toggle subscription"))
		return
	}

	log.Info("subscription toggled", slog.Int("course_id", req.CourseID))
	render.JSON(w, r, map[string]any{
		"message": message,
	})
}
