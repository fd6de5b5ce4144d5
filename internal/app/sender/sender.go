// Package sender собирает приложение рассылки уведомлений: потребляет
// сообщения об обновлении курсов и отправляет письма подписчикам.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/kopstant/lms-backend/internal/config"
	"github.com/kopstant/lms-backend/internal/lib/rabbitmq"
	"github.com/kopstant/lms-backend/internal/lib/smtp"
	senderservice "github.com/kopstant/lms-backend/internal/services/sender"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// App представляет приложение рассылки уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	db            *repository.Storage
	logger        *slog.Logger
}

// New создает новый экземпляр приложения рассылки.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
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

	transport := smtp.NewTransport(cfg.SMTPConnection, logger)
	senderService := senderservice.NewSenderService(db, transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		db:            db,
		logger:        logger,
	}, nil
}

// Run запускает потребителя очереди и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.CourseUpdatedQueue, a.senderService.HandleCourseUpdated)
	if err != nil {
		a.logger.Error("failed to start course-updated consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", slog.Any("err", err))
	}
	return nil
}
