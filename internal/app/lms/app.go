// Package lms собирает основное HTTP-приложение платформы: хранилище,
// миграции, кеш, очередь событий, платёжный провайдер и все сервисы
// с их маршрутами.
package lms

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/cache"
	"github.com/kopstant/lms-backend/internal/config"
	jwtlib "github.com/kopstant/lms-backend/internal/lib/jwt"
	"github.com/kopstant/lms-backend/internal/lib/rabbitmq"
	"github.com/kopstant/lms-backend/internal/lib/redlock"
	"github.com/kopstant/lms-backend/internal/migrations"
	"github.com/kopstant/lms-backend/internal/paymentprovider"
	authservice "github.com/kopstant/lms-backend/internal/services/auth"
	courseservice "github.com/kopstant/lms-backend/internal/services/course"
	lessonservice "github.com/kopstant/lms-backend/internal/services/lesson"
	paymentservice "github.com/kopstant/lms-backend/internal/services/payment"
	subservice "github.com/kopstant/lms-backend/internal/services/subscription"
	userservice "github.com/kopstant/lms-backend/internal/services/user"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// App представляет основное HTTP-приложение.
type App struct {
	server *http.Server
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger
}

// New создает приложение: подключает зависимости, применяет миграции
// и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.AddressRabbitMQ, cfg.RetriesRabbitMQ, cfg.DelayRabbitMQ)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	jwtMaker := jwtlib.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.RefreshTTL)
	engine := authz.New(authz.Policy{})
	events := rabbitmq.NewEventBus(ch)
	locker := redlock.New(cacheRedis.Db)
	provider := paymentprovider.NewClient(cfg.PaymentProvider.APIKey, cfg.PaymentProvider.APIURL)

	authService := authservice.NewAuthService(db, jwtMaker, logger)
	courseService := courseservice.NewCourseService(db, cacheRedis, engine, events, logger)
	lessonService := lessonservice.NewLessonService(db, engine, logger)
	subscriptionService := subservice.NewSubscriptionService(db, logger)
	paymentService := paymentservice.NewPaymentService(db, provider, locker, cfg.PaymentProvider, logger)
	userService := userservice.NewUserService(db, engine, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		JWTMaker:     jwtMaker,
		Auth:         authService,
		Course:       courseService,
		Lesson:       lessonService,
		Subscription: subscriptionService,
		Payment:      paymentService,
		User:         userService,
		Storage:      db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		db:     db,
		conn:   conn,
		ch:     ch,
		logger: logger,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
