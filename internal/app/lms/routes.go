// Package lms предоставляет маршруты для основного приложения.
package lms

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/kopstant/lms-backend/internal/http/handlers/auth/refresh"
	"github.com/kopstant/lms-backend/internal/http/handlers/auth/register"
	"github.com/kopstant/lms-backend/internal/http/handlers/auth/token"
	coursecreate "github.com/kopstant/lms-backend/internal/http/handlers/course/create"
	courselist "github.com/kopstant/lms-backend/internal/http/handlers/course/list"
	courseread "github.com/kopstant/lms-backend/internal/http/handlers/course/read"
	courseremove "github.com/kopstant/lms-backend/internal/http/handlers/course/remove"
	courseupdate "github.com/kopstant/lms-backend/internal/http/handlers/course/update"
	"github.com/kopstant/lms-backend/internal/http/handlers/health"
	lessoncreate "github.com/kopstant/lms-backend/internal/http/handlers/lesson/create"
	lessonlist "github.com/kopstant/lms-backend/internal/http/handlers/lesson/list"
	lessonread "github.com/kopstant/lms-backend/internal/http/handlers/lesson/read"
	lessonremove "github.com/kopstant/lms-backend/internal/http/handlers/lesson/remove"
	lessonupdate "github.com/kopstant/lms-backend/internal/http/handlers/lesson/update"
	"github.com/kopstant/lms-backend/internal/http/handlers/payment/paymentcancel"
	"github.com/kopstant/lms-backend/internal/http/handlers/payment/paymentcreate"
	"github.com/kopstant/lms-backend/internal/http/handlers/payment/paymentlist"
	"github.com/kopstant/lms-backend/internal/http/handlers/payment/paymentsuccess"
	"github.com/kopstant/lms-backend/internal/http/handlers/subscription/toggle"
	userlist "github.com/kopstant/lms-backend/internal/http/handlers/user/list"
	userread "github.com/kopstant/lms-backend/internal/http/handlers/user/read"
	userupdate "github.com/kopstant/lms-backend/internal/http/handlers/user/update"
	"github.com/kopstant/lms-backend/internal/http/middlewarectx"
	jwtlib "github.com/kopstant/lms-backend/internal/lib/jwt"
	authservice "github.com/kopstant/lms-backend/internal/services/auth"
	courseservice "github.com/kopstant/lms-backend/internal/services/course"
	lessonservice "github.com/kopstant/lms-backend/internal/services/lesson"
	paymentservice "github.com/kopstant/lms-backend/internal/services/payment"
	subservice "github.com/kopstant/lms-backend/internal/services/subscription"
	userservice "github.com/kopstant/lms-backend/internal/services/user"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// Services собирает зависимости маршрутов приложения.
type Services struct {
	JWTMaker     jwtlib.Maker
	Auth         *authservice.AuthService
	Course       *courseservice.CourseService
	Lesson       *lessonservice.LessonService
	Subscription *subservice.SubscriptionService
	Payment      *paymentservice.PaymentService
	User         *userservice.UserService
	Storage      *repository.Storage
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/token", token.New(logger, s.Auth).ServeHTTP)
		r.Post("/token/refresh", refresh.New(logger, s.Auth).ServeHTTP)

		// Возвраты со страниц провайдера приходят без токена
		r.Get("/payments/success/{id}", paymentsuccess.New(logger, s.Payment).ServeHTTP)
		r.Get("/payments/cancel/{id}", paymentcancel.New(logger, s.Payment).ServeHTTP)

		// Список уроков публичный: токен учитывается, но не обязателен
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(s.JWTMaker, logger))
			r.Get("/lessons", lessonlist.New(logger, s.Lesson).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/users", userlist.New(logger, s.User).ServeHTTP)
			r.Get("/users/{uid}", userread.New(logger, s.User).ServeHTTP)
			r.Put("/users/{uid}", userupdate.New(logger, s.User).ServeHTTP)

			r.Post("/courses", coursecreate.New(logger, s.Course).ServeHTTP)
			r.Get("/courses", courselist.New(logger, s.Course).ServeHTTP)
			r.Get("/courses/{id}", courseread.New(logger, s.Course).ServeHTTP)
			r.Put("/courses/{id}", courseupdate.New(logger, s.Course).ServeHTTP)
			r.Delete("/courses/{id}", courseremove.New(logger, s.Course).ServeHTTP)

			r.Post("/lessons/create", lessoncreate.New(logger, s.Lesson).ServeHTTP)
			r.Get("/lessons/{id}", lessonread.New(logger, s.Lesson).ServeHTTP)
			r.Put("/lessons/{id}", lessonupdate.New(logger, s.Lesson).ServeHTTP)
			r.Delete("/lessons/{id}", lessonremove.New(logger, s.Lesson).ServeHTTP)

			r.Post("/subscriptions", toggle.New(logger, s.Subscription).ServeHTTP)

			r.Post("/payments/create", paymentcreate.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments/list", paymentlist.New(logger, s.Payment).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
	r.Get("/health", health.New(logger, s.Storage).ServeHTTP)
}
