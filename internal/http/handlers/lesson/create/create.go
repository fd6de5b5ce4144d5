// Package create реализует HTTP-обработчик создания урока.
//
// Урок добавляется в существующий курс: отсутствующий курс даёт 404,
// чужой курс — 403. Ссылка на видео допускается только с youtube.com.
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
	"github.com/kopstant/lms-backend/internal/lib/validatex"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/services/lesson"
)

// Handler обрабатывает HTTP-запросы на создание урока.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис бизнес-логики уроков
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания урока.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, req models.DummyLesson) (int, error)
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
// @Summary Создать урок
// @Description Создает урок в курсе вызывающего. Видео только с youtube.com.
// @Tags Lessons
// @Accept  json
// @Produce  json
// @Param request body models.DummyLesson true "Данные нового урока"
// @Success 201 {object} map[string]any "Урок создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или ссылка на видео"
// @Failure 403 {object} response.ErrorResponse "Курс принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Security BearerAuth
// @Router /lessons/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyLesson
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
		switch {
		case errors.Is(err, validatex.ErrBadVideoURL), errors.Is(err, validatex.ErrNotYoutubeURL):
			log.Error("invalid video url", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, lesson.ErrCourseNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
		case errors.Is(err, lesson.ErrNotCourseOwner), errors.Is(err, lesson.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
		default:
			log.Error("failed to create lesson", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create lesson"))
		}
		return
	}

	log.Info("lesson created", slog.Int("id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id": id,
	}))
}
