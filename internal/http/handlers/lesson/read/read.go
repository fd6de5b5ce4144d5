// Package read реализует HTTP-обработчик получения урока по ID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/http/middlewarectx"
	"github.com/kopstant/lms-backend/internal/http/response"
	"github.com/kopstant/lms-backend/internal/lib/sl"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/services/lesson"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// Handler обрабатывает запросы на получение урока по идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики уроков
}

// Service описывает интерфейс бизнес-логики чтения урока.
type Service interface {
	Read(ctx context.Context, actor authz.Actor, id int) (*models.Lesson, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить урок
// @Description Возвращает урок по его ID.
// @Tags Lessons
// @Produce  json
// @Param id path int true "ID урока"
// @Success 200 {object} map[string]any "Данные урока"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Failure 404 {object} response.ErrorResponse "Урок не найден"
// @Security BearerAuth
// @Router /lessons/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.read"

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

	actor := middlewarectx.ActorFromContext(r.Context())
	res, err := h.service.Read(r.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, lesson.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
		case errors.Is(err, repository.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("lesson not found"))
		default:
			log.Error("failed to read lesson", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read lesson"))
		}
		return
	}

	log.Info("lesson read", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"lesson": res,
	}))
}
