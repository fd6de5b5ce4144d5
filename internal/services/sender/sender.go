// Package sender содержит логику рассылки писем подписчикам курса.
// Сервис читает из очереди уведомление об обновлении курса, находит
// подписчиков курса в хранилище и отправляет каждому письмо.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kopstant/lms-backend/internal/lib/sl"
	"github.com/kopstant/lms-backend/internal/lib/smtp"
	"github.com/kopstant/lms-backend/internal/models"
)

// SubscriberRepository определяет выборку подписчиков курса.
type SubscriberRepository interface {
	ListCourseSubscribers(ctx context.Context, courseID int) ([]*models.User, error)
}

// SenderService рассылает письма об обновлении курса.
type SenderService struct {
	repo      SubscriberRepository
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(repo SubscriberRepository, transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		repo:      repo,
		transport: transport,
		log:       log,
	}
}

// HandleCourseUpdated обрабатывает сообщение из очереди обновлений курса:
// находит подписчиков и отправляет каждому письмо. Ошибка отправки одному
// получателю не прерывает рассылку остальным.
func (s *SenderService) HandleCourseUpdated(body []byte) error {
	var note models.CourseUpdatedNote
	if err := json.Unmarshal(body, &note); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subscribers, err := s.repo.ListCourseSubscribers(context.Background(), note.CourseID)
	if err != nil {
		s.log.Error("failed to list course subscribers",
			slog.Int("course_id", note.CourseID), sl.Err(err))
		return err
	}
	if len(subscribers) == 0 {
		s.log.Info("course has no subscribers", slog.Int("course_id", note.CourseID))
		return nil
	}

	subject := "Курс обновлен!"
	bodyText := fmt.Sprintf("Здравствуйте!\n\nМатериалы курса %q обновились. Зайдите на платформу, чтобы посмотреть новые уроки.", note.Title)

	var failed int
	for _, sub := range subscribers {
		if err := s.sendEmail([]string{sub.Email}, subject, bodyText); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to send %d of %d emails", failed, len(subscribers))
	}
	s.log.Info("course update emails sent",
		slog.Int("course_id", note.CourseID), slog.Int("count", len(subscribers)))
	return nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.String("to", strings.Join(to, ";")))
	return nil
}
