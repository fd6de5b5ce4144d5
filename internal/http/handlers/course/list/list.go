// Package list реализует HTTP-обработчик списка курсов с пагинацией.
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
	"github.com/kopstant/lms-backend/internal/services/course"
)

// Handler обрабатывает HTTP-запросы списка курсов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики курсов
}

// Service описывает интерфейс бизнес-логики списка курсов.
type Service interface {
	List(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Course, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список курсов
// @Description Возвращает страницу курсов. Размер страницы по умолчанию 10, максимум 50.
// @Tags Courses
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} map[string]any "Список курсов"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Security BearerAuth
// @Router /courses [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, offset := pagination.Parse(r)
	actor := middlewarectx.ActorFromContext(r.Context())

	courses, err := h.service.List(r.Context(), actor, limit, offset)
	if err != nil {
		if errors.Is(err, course.ErrForbidden) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
			return
		}
		log.Error("failed to list courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list courses"))
		return
	}

	log.Info("courses listed", slog.Int("count", len(courses)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"courses": courses,
		"limit":   limit,
		"offset":  offset,
	}))
}
