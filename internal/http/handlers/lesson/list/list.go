// Package list реализует HTTP-обработчик списка уроков с пагинацией.
// Список уроков доступен без авторизации.
package list

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
	"github.com/kopstant/lms-backend/internal/services/lesson"
)

// Handler обрабатывает HTTP-запросы списка уроков.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики уроков
}

// Service описывает интерфейс бизнес-логики списка уроков.
type Service interface {
	List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Lesson, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список уроков
// @Description Возвращает страницу уроков. Доступно без авторизации.
// @Tags Lessons
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список уроков"
// @Router /lessons [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lesson.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := pagination.Parse(r)
	actor := middlewarectx.ActorFromContext(r.Context())

	lessons, err := h.service.List(r.Context(), actor, limit, offset)
	if err != nil {
		if errors.Is(err, lesson.ErrForbidden) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
			return
		}
		log.Error("failed to list lessons", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list lessons"))
		return
	}

	log.Info("lessons listed", slog.Int("count", len(lessons)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"lessons": lessons,
		"limit":   limit,
		"offset":  offset,
	}))
}
