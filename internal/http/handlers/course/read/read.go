// Package read реализует HTTP-обработчик получения курса по ID.
//
// Вместе с курсом возвращается количество уроков и признак подписки
// текущего пользователя.
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
	"github.com/kopstant/lms-backend/internal/services/course"
)

// Handler обрабатывает запросы на получение курса по идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики курсов
}

// Service описывает интерфейс бизнес-логики чтения курса.
type Service interface {
	Read(ctx context.Context, actor authz.Actor, id int) (*models.CourseInfo, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить курс
// @Description Возвращает курс с количеством уроков и признаком подписки.
// @Tags Courses
// @Produce  json
// @Param id path int true "ID курса"
// @Success 200 {object} map[string]any "Данные курса"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Security BearerAuth
// @Router /courses/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.read"

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
	info, err := h.service.Read(r.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, course.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
		case course.IsNotFound(err):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
		default:
			log.Error("failed to read course", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not read course"))
		}
		return
	}

	log.Info("course read", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"course":        info.Course,
		"lessons_count": info.LessonsCount,
		"is_subscribed": info.IsSubscribed,
	}))
}
