package payment

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/config"
	"github.com/kopstant/lms-backend/internal/lib/validatex"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/paymentprovider"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// Мок для PaymentRepository
type PaymentRepoMock struct {
	mock.Mock
}

func (m *PaymentRepoMock) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	args := m.Called(ctx, payment)
	return args.Int(0), args.Error(1)
}

func (m *PaymentRepoMock) ReadPayment(ctx context.Context, id int) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *PaymentRepoMock) AttachCheckoutSession(ctx context.Context, id int, productID, priceID, sessionID, link string) error {
	args := m.Called(ctx, id, productID, priceID, sessionID, link)
	return args.Error(0)
}

func (m *PaymentRepoMock) MarkPaymentPaid(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *PaymentRepoMock) RemovePayment(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *PaymentRepoMock) ListPayments(ctx context.Context, userUID string, method *string, limit, offset int) ([]*models.Payment, error) {
	args := m.Called(ctx, userUID, method, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *PaymentRepoMock) ReadCourse(ctx context.Context, id int) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *PaymentRepoMock) ReadLesson(ctx context.Context, id int) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

// Мок для Provider
type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) CreateProduct(ctx context.Context, name, description string) (string, error) {
	args := m.Called(ctx, name, description)
	return args.String(0), args.Error(1)
}

func (m *ProviderMock) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error) {
	args := m.Called(ctx, productID, unitAmount, currency)
	return args.String(0), args.Error(1)
}

func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, params paymentprovider.SessionParams) (*paymentprovider.Session, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Session), args.Error(1)
}

func (m *ProviderMock) RetrieveSession(ctx context.Context, sessionID string) (*paymentprovider.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Session), args.Error(1)
}

// Мок для Locker
type LockerMock struct {
	mock.Mock
}

func (m *LockerMock) Acquire(ctx context.Context, key string, ttl time.Duration) (func() error, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func() error), args.Error(1)
}

func newTestService(repo *PaymentRepoMock, provider *ProviderMock, locker *LockerMock) *PaymentService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := config.PaymentProvider{
		Currency:   "rub",
		SuccessURL: "https://lms.example.com/payments/success",
		CancelURL:  "https://lms.example.com/payments/cancel",
	}
	return NewPaymentService(repo, provider, locker, cfg, logger)
}

func noopRelease() error { return nil }

func TestCreate(t *testing.T) {
	ctx := context.Background()
	actor := authz.ActorFromUser("uid-1", "user@example.com", "user", false)
	courseID := 5

	t.Run("успешное создание черновика", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		repo.On("ReadCourse", mock.Anything, 5).Return(&models.Course{ID: 5, Title: "Go"}, nil)
		repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
			return p.UserUID != nil && *p.UserUID == "uid-1" && p.Amount == 1500 && !p.IsPaid
		})).Return(42, nil)

		id, err := newTestService(repo, new(ProviderMock), new(LockerMock)).Create(ctx, actor, models.DummyPayment{
			Amount:        1500,
			PaymentMethod: models.PaymentMethodCash,
			CourseID:      &courseID,
		})

		assert.NoError(t, err)
		assert.Equal(t, 42, id)
		repo.AssertExpectations(t)
	})

	t.Run("аноним не может создать платеж", func(t *testing.T) {
		_, err := newTestService(new(PaymentRepoMock), new(ProviderMock), new(LockerMock)).Create(ctx, authz.Actor{}, models.DummyPayment{
			Amount:        1500,
			PaymentMethod: models.PaymentMethodCash,
			CourseID:      &courseID,
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("платеж без цели", func(t *testing.T) {
		_, err := newTestService(new(PaymentRepoMock), new(ProviderMock), new(LockerMock)).Create(ctx, actor, models.DummyPayment{
			Amount:        1500,
			PaymentMethod: models.PaymentMethodCash,
		})
		assert.ErrorIs(t, err, validatex.ErrNoPaymentTarget)
	})

	t.Run("платеж за несуществующий курс", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		repo.On("ReadCourse", mock.Anything, 5).Return(nil, repository.ErrNotFound)

		_, err := newTestService(repo, new(ProviderMock), new(LockerMock)).Create(ctx, actor, models.DummyPayment{
			Amount:        1500,
			PaymentMethod: models.PaymentMethodCash,
			CourseID:      &courseID,
		})
		assert.ErrorIs(t, err, ErrTargetNotFound)
	})
}

func TestInitiateCheckout(t *testing.T) {
	ctx := context.Background()
	actor := authz.ActorFromUser("uid-1", "user@example.com", "user", false)
	userUID := "uid-1"
	courseID := 5

	draft := func() *models.Payment {
		return &models.Payment{
			ID:            42,
			UserUID:       &userUID,
			CourseID:      &courseID,
			Amount:        1500,
			PaymentMethod: models.PaymentMethodStripe,
		}
	}

	t.Run("успешная инициация оплаты", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		provider := new(ProviderMock)
		locker := new(LockerMock)

		repo.On("ReadPayment", mock.Anything, 42).Return(draft(), nil)
		locker.On("Acquire", mock.Anything, "payment:checkout:42", time.Minute).Return(noopRelease, nil)
		repo.On("ReadCourse", mock.Anything, 5).Return(&models.Course{ID: 5, Title: "Go с нуля", Description: "Курс по Go"}, nil)
		provider.On("CreateProduct", mock.Anything, "Go с нуля", "Курс по Go").Return("prod_1", nil)
		provider.On("CreatePrice", mock.Anything, "prod_1", int64(150000), "rub").Return("price_1", nil)
		provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p paymentprovider.SessionParams) bool {
			return p.PriceID == "price_1" &&
				p.SuccessURL == "https://lms.example.com/payments/success/42" &&
				p.CancelURL == "https://lms.example.com/payments/cancel/42" &&
				p.PaymentID == "42"
		})).Return(&paymentprovider.Session{ID: "cs_1", URL: "https://pay.example.com/cs_1"}, nil)
		repo.On("AttachCheckoutSession", mock.Anything, 42, "prod_1", "price_1", "cs_1", "https://pay.example.com/cs_1").Return(nil)

		result, err := newTestService(repo, provider, locker).InitiateCheckout(ctx, actor, 42, "user@example.com")

		require.NoError(t, err)
		assert.Equal(t, 42, result.PaymentID)
		assert.Equal(t, "cs_1", result.SessionID)
		assert.Equal(t, "https://pay.example.com/cs_1", result.PaymentLink)
		repo.AssertExpectations(t)
		provider.AssertExpectations(t)
		locker.AssertExpectations(t)
	})

	t.Run("сбой провайдера удаляет черновик", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		provider := new(ProviderMock)
		locker := new(LockerMock)

		repo.On("ReadPayment", mock.Anything, 42).Return(draft(), nil)
		locker.On("Acquire", mock.Anything, "payment:checkout:42", time.Minute).Return(noopRelease, nil)
		repo.On("ReadCourse", mock.Anything, 5).Return(&models.Course{ID: 5, Title: "Go", Description: "Курс"}, nil)
		provider.On("CreateProduct", mock.Anything, "Go", "Курс").Return("", errors.New("provider unavailable"))
		repo.On("RemovePayment", mock.Anything, 42).Return(1, nil)

		_, err := newTestService(repo, provider, locker).InitiateCheckout(ctx, actor, 42, "user@example.com")

		assert.Error(t, err)
		repo.AssertCalled(t, "RemovePayment", mock.Anything, 42)
	})

	t.Run("блокировка занята параллельным запросом", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		locker := new(LockerMock)

		repo.On("ReadPayment", mock.Anything, 42).Return(draft(), nil)
		locker.On("Acquire", mock.Anything, "payment:checkout:42", time.Minute).Return(nil, errors.New("lock taken"))

		_, err := newTestService(repo, new(ProviderMock), locker).InitiateCheckout(ctx, actor, 42, "user@example.com")

		assert.ErrorIs(t, err, ErrCheckoutInProgress)
	})

	t.Run("чужой платеж", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		repo.On("ReadPayment", mock.Anything, 42).Return(draft(), nil)

		stranger := authz.ActorFromUser("uid-2", "other@example.com", "user", false)
		_, err := newTestService(repo, new(ProviderMock), new(LockerMock)).InitiateCheckout(ctx, stranger, 42, "other@example.com")

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("существующая сессия возвращается без обращения к провайдеру", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		provider := new(ProviderMock)

		payment := draft()
		payment.StripeSessionID = "cs_old"
		payment.PaymentLink = "https://pay.example.com/cs_old"
		repo.On("ReadPayment", mock.Anything, 42).Return(payment, nil)

		result, err := newTestService(repo, provider, new(LockerMock)).InitiateCheckout(ctx, actor, 42, "user@example.com")

		require.NoError(t, err)
		assert.Equal(t, "cs_old", result.SessionID)
		provider.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()
	userUID := "uid-1"

	t.Run("провайдер подтверждает оплату", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		provider := new(ProviderMock)

		repo.On("ReadPayment", mock.Anything, 42).Return(&models.Payment{
			ID: 42, UserUID: &userUID, StripeSessionID: "cs_1",
		}, nil)
		provider.On("RetrieveSession", mock.Anything, "cs_1").
			Return(&paymentprovider.Session{ID: "cs_1", PaymentStatus: "paid"}, nil)
		repo.On("MarkPaymentPaid", mock.Anything, 42).Return(nil)

		payment, err := newTestService(repo, provider, new(LockerMock)).Confirm(ctx, 42)

		require.NoError(t, err)
		assert.True(t, payment.IsPaid)
		repo.AssertExpectations(t)
	})

	t.Run("провайдер оплату не подтвердил", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		provider := new(ProviderMock)

		repo.On("ReadPayment", mock.Anything, 42).Return(&models.Payment{
			ID: 42, UserUID: &userUID, StripeSessionID: "cs_1",
		}, nil)
		provider.On("RetrieveSession", mock.Anything, "cs_1").
			Return(&paymentprovider.Session{ID: "cs_1", PaymentStatus: "unpaid"}, nil)

		payment, err := newTestService(repo, provider, new(LockerMock)).Confirm(ctx, 42)

		require.NoError(t, err)
		assert.False(t, payment.IsPaid)
		repo.AssertNotCalled(t, "MarkPaymentPaid", mock.Anything, mock.Anything)
	})

	t.Run("повторное подтверждение оплаченного платежа", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		provider := new(ProviderMock)

		repo.On("ReadPayment", mock.Anything, 42).Return(&models.Payment{
			ID: 42, UserUID: &userUID, StripeSessionID: "cs_1", IsPaid: true,
		}, nil)

		payment, err := newTestService(repo, provider, new(LockerMock)).Confirm(ctx, 42)

		require.NoError(t, err)
		assert.True(t, payment.IsPaid)
		provider.AssertNotCalled(t, "RetrieveSession", mock.Anything, mock.Anything)
	})

	t.Run("платеж без сессии оплаты", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		repo.On("ReadPayment", mock.Anything, 42).Return(&models.Payment{
			ID: 42, UserUID: &userUID,
		}, nil)

		_, err := newTestService(repo, new(ProviderMock), new(LockerMock)).Confirm(ctx, 42)

		assert.ErrorIs(t, err, ErrNoCheckoutSession)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	actor := authz.ActorFromUser("uid-1", "user@example.com", "user", false)

	t.Run("список платежей с фильтром", func(t *testing.T) {
		repo := new(PaymentRepoMock)
		method := models.PaymentMethodStripe
		repo.On("ListPayments", mock.Anything, "uid-1", &method, 10, 0).
			Return([]*models.Payment{{ID: 1}, {ID: 2}}, nil)

		payments, err := newTestService(repo, new(ProviderMock), new(LockerMock)).List(ctx, actor, &method, 10, 0)

		assert.NoError(t, err)
		assert.Len(t, payments, 2)
	})

	t.Run("аноним не видит платежей", func(t *testing.T) {
		_, err := newTestService(new(PaymentRepoMock), new(ProviderMock), new(LockerMock)).List(ctx, authz.Actor{}, nil, 10, 0)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
