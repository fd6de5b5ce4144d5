package sender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kopstant/lms-backend/internal/lib/smtp"
	"github.com/kopstant/lms-backend/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListCourseSubscribers(ctx context.Context, courseID int) ([]*models.User, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func expectEmailSent(transport *MockTransport, recipient string) {
	mockClient := new(MockSMTPClient)
	mockWriter := new(MockSMTPWriter)

	transport.On("GetSMTPUser").Return("noreply@lms.example.com")
	transport.On("Connect").Return(mockClient, nil).Once()
	mockClient.On("Mail", "noreply@lms.example.com").Return(nil).Once()
	mockClient.On("Rcpt", recipient).Return(nil).Once()
	mockClient.On("Data").Return(mockWriter, nil).Once()
	mockWriter.On("Write", mock.MatchedBy(func(p []byte) bool {
		msg := string(p)
		return strings.Contains(msg, "Subject: Курс обновлен!") && strings.Contains(msg, recipient)
	})).Return(100, nil).Once()
	mockWriter.On("Close").Return(nil).Once()
	mockClient.On("Quit").Return(nil).Once()
	mockClient.On("Close").Return(nil).Once()
}

func TestHandleCourseUpdated(t *testing.T) {
	t.Run("рассылка всем подписчикам курса", func(t *testing.T) {
		repo := new(MockRepository)
		transport := new(MockTransport)

		repo.On("ListCourseSubscribers", mock.Anything, 5).Return([]*models.User{
			{UID: "uid-1", Email: "first@example.com"},
		}, nil)
		expectEmailSent(transport, "first@example.com")

		service := NewSenderService(repo, transport, newNoopLogger())
		err := service.HandleCourseUpdated([]byte(`{"course_id":5,"title":"Go с нуля"}`))

		assert.NoError(t, err)
		repo.AssertExpectations(t)
		transport.AssertExpectations(t)
	})

	t.Run("у курса нет подписчиков", func(t *testing.T) {
		repo := new(MockRepository)
		transport := new(MockTransport)

		repo.On("ListCourseSubscribers", mock.Anything, 5).Return([]*models.User{}, nil)

		service := NewSenderService(repo, transport, newNoopLogger())
		err := service.HandleCourseUpdated([]byte(`{"course_id":5,"title":"Go с нуля"}`))

		assert.NoError(t, err)
		transport.AssertNotCalled(t, "Connect")
	})

	t.Run("некорректное тело сообщения", func(t *testing.T) {
		service := NewSenderService(new(MockRepository), new(MockTransport), newNoopLogger())
		err := service.HandleCourseUpdated([]byte("not a json"))
		assert.Error(t, err)
	})

	t.Run("ошибка выборки подписчиков", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListCourseSubscribers", mock.Anything, 5).Return(nil, errors.New("db error"))

		service := NewSenderService(repo, new(MockTransport), newNoopLogger())
		err := service.HandleCourseUpdated([]byte(`{"course_id":5,"title":"Go с нуля"}`))

		assert.Error(t, err)
	})

	t.Run("сбой отправки одному получателю не прерывает рассылку", func(t *testing.T) {
		repo := new(MockRepository)
		transport := new(MockTransport)

		repo.On("ListCourseSubscribers", mock.Anything, 5).Return([]*models.User{
			{UID: "uid-1", Email: "first@example.com"},
			{UID: "uid-2", Email: "second@example.com"},
		}, nil)

		transport.On("GetSMTPUser").Return("noreply@lms.example.com")
		transport.On("Connect").Return(nil, errors.New("smtp unavailable")).Twice()

		service := NewSenderService(repo, transport, newNoopLogger())
		err := service.HandleCourseUpdated([]byte(`{"course_id":5,"title":"Go с нуля"}`))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send 2 of 2 emails")
		transport.AssertNumberOfCalls(t, "Connect", 2)
	})
}
