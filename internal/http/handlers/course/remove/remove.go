// Package remove реализует HTTP-обработчик удаления курса.
//
// Уроки удаляемого курса удаляются каскадно на уровне хранилища.
package remove

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
	"github.com/kopstant/lms-backend/internal/services/course"
)

// Handler обрабатывает HTTP-запросы на удаление курса.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики курсов
}

// Service описывает интерфейс бизнес-логики удаления курса.
type Service interface {
	Remove(ctx context.Context, actor authz.Actor, id int) (int, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить курс
// @Description Удаляет курс вместе с уроками. Доступно только владельцу.
// @Tags Courses
// @Produce  json
// @Param id path int true "ID курса"
// @Success 200 {object} map[string]any "Курс удален"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Security BearerAuth
// @Router /courses/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.remove"

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
	count, err := h.service.Remove(r.Context(), actor, id)
	if err != nil {
		switch {
		case errors.Is(err, course.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
		case course.IsNotFound(err):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
		default:
			log.Error("failed to remove course", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not remove course"))
		}
		return
	}

	log.Info("course removed", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"removed_count": count,
	}))
}
