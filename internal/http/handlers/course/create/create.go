// Package create реализует HTTP-обработчик создания курса.
//
// Handler принимает JSON с данными курса, валидирует их, извлекает Actor
// из контекста и вызывает бизнес-логику создания. Владельцем курса
// становится вызывающий.
package create

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
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/services/course"
)

// Handler обрабатывает HTTP-запросы на создание курса.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики курсов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания курса.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, req models.DummyCourse) (int, error)
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
// @Summary Создать курс
// @Description Создает новый курс, владельцем становится текущий пользователь.
// @Tags Courses
// @Accept  json
// @Produce  json
// @Param request body models.DummyCourse true "Данные нового курса"
// @Success 201 {object} map[string]any "Курс создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Security BearerAuth
// @Router /courses [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCourse
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
	id, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		if errors.Is(err, course.ErrForbidden) {
			log.Error("course creation forbidden")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
			return
		}
		log.Error("failed to create course", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create course"))
		return
	}

	log.Info("course created", slog.Int("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}
