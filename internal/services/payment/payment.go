// Package payment содержит бизнес-логику платежей: создание черновика,
// инициация оплаты у внешнего провайдера, подтверждение и отмена оплаты,
// список платежей пользователя. Инициация одного платежа защищена
// распределённой блокировкой от параллельного повтора.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kopstant/lms-backend/internal/authz"
	"github.com/kopstant/lms-backend/internal/config"
	"github.com/kopstant/lms-backend/internal/lib/sl"
	"github.com/kopstant/lms-backend/internal/lib/validatex"
	"github.com/kopstant/lms-backend/internal/models"
	"github.com/kopstant/lms-backend/internal/paymentprovider"
	"github.com/kopstant/lms-backend/internal/storage/repository"
)

// Ошибки платёжного сервиса.
var (
	ErrForbidden          = errors.New("forbidden")
	ErrTargetNotFound     = errors.New("payment target not found")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrNoCheckoutSession  = errors.New("payment has no checkout session")
)

// Время жизни блокировки на инициацию оплаты. Покрывает три последовательных
// вызова провайдера с запасом.
const checkoutLockTTL = time.Minute

// PaymentRepository определяет методы для работы с платежами в хранилище.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment models.Payment) (int, error)
	ReadPayment(ctx context.Context, id int) (*models.Payment, error)
	AttachCheckoutSession(ctx context.Context, id int, productID, priceID, sessionID, link string) error
	MarkPaymentPaid(ctx context.Context, id int) error
	RemovePayment(ctx context.Context, id int) (int, error)
	ListPayments(ctx context.Context, userUID string, method *string, limit, offset int) ([]*models.Payment, error)
	ReadCourse(ctx context.Context, id int) (*models.Course, error)
	ReadLesson(ctx context.Context, id int) (*models.Lesson, error)
}

// Provider описывает операции внешнего платёжного провайдера.
type Provider interface {
	CreateProduct(ctx context.Context, name, description string) (string, error)
	CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error)
	CreateCheckoutSession(ctx context.Context, params paymentprovider.SessionParams) (*paymentprovider.Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*paymentprovider.Session, error)
}

// Locker выдаёт блокировку по ключу без ожидания.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func() error, error)
}

// CheckoutResult результат инициации оплаты.
type CheckoutResult struct {
	PaymentID   int    `json:"payment_id"`
	SessionID   string `json:"session_id"`
	PaymentLink string `json:"payment_link"`
}

// PaymentService реализует жизненный цикл платежа.
type PaymentService struct {
	repo     PaymentRepository
	provider Provider
	locker   Locker
	cfg      config.PaymentProvider
	log      *slog.Logger
}

// NewPaymentService создает новый экземпляр PaymentService.
func NewPaymentService(repo PaymentRepository, provider Provider, locker Locker, cfg config.PaymentProvider, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		provider: provider,
		locker:   locker,
		cfg:      cfg,
		log:      log,
	}
}

// Create создаёт платёж-черновик за курс или урок. Платёж ещё не уходит
// к провайдеру, для этого есть InitiateCheckout.
func (s *PaymentService) Create(ctx context.Context, actor authz.Actor, req models.DummyPayment) (int, error) {
	if !actor.Authenticated {
		return 0, ErrForbidden
	}
	if err := validatex.PaymentTarget(req); err != nil {
		return 0, err
	}
	if err := validatex.PaymentAmount(req); err != nil {
		return 0, err
	}
	if err := s.checkTarget(ctx, req); err != nil {
		return 0, err
	}

	userUID := actor.UserUID
	payment := models.Payment{
		UserUID:       &userUID,
		CourseID:      req.CourseID,
		LessonID:      req.LessonID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		IsPaid:        false,
	}
	id, err := s.repo.CreatePayment(ctx, payment)
	if err != nil {
		return 0, err
	}
	s.log.Info("created payment draft",
		slog.Int("id", id), slog.String("method", req.PaymentMethod))
	return id, nil
}

func (s *PaymentService) checkTarget(ctx context.Context, req models.DummyPayment) error {
	if req.CourseID != nil {
		if _, err := s.repo.ReadCourse(ctx, *req.CourseID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTargetNotFound
			}
			return err
		}
	}
	if req.LessonID != nil {
		if _, err := s.repo.ReadLesson(ctx, *req.LessonID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTargetNotFound
			}
			return err
		}
	}
	return nil
}

// InitiateCheckout создаёт у провайдера продукт, цену и сессию оплаты для
// платежа и сохраняет их реквизиты. При сбое провайдера черновик платежа
// удаляется, чтобы не копить неоплачиваемые записи. Повторная инициация
// того же платежа параллельным запросом отклоняется блокировкой.
func (s *PaymentService) InitiateCheckout(ctx context.Context, actor authz.Actor, paymentID int, customerEmail string) (*CheckoutResult, error) {
	const op = "payment.InitiateCheckout"

	payment, err := s.repo.ReadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserUID == nil || *payment.UserUID != actor.UserUID {
		return nil, ErrForbidden
	}
	if payment.IsPaid {
		return nil, fmt.Errorf("%s: payment %d already paid", op, paymentID)
	}
	if payment.StripeSessionID != "" {
		// Сессия уже есть, возвращаем имеющуюся ссылку.
		return &CheckoutResult{
			PaymentID:   payment.ID,
			SessionID:   payment.StripeSessionID,
			PaymentLink: payment.PaymentLink,
		}, nil
	}

	release, err := s.locker.Acquire(ctx, checkoutLockKey(paymentID), checkoutLockTTL)
	if err != nil {
		return nil, ErrCheckoutInProgress
	}
	defer func() {
		if err := release(); err != nil {
			s.log.Warn("failed to release checkout lock", sl.Err(err))
		}
	}()

	name, description, err := s.describeTarget(ctx, payment)
	if err != nil {
		return nil, err
	}

	session, productID, priceID, err := s.createCheckout(ctx, payment, name, description, customerEmail)
	if err != nil {
		// Черновик без сессии оплатить нельзя, зачищаем его.
		if _, removeErr := s.repo.RemovePayment(ctx, paymentID); removeErr != nil {
			s.log.Error("failed to remove payment draft after provider failure",
				slog.Int("id", paymentID), sl.Err(removeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.AttachCheckoutSession(ctx, paymentID, productID, priceID, session.ID, session.URL); err != nil {
		return nil, err
	}
	s.log.Info("checkout session created",
		slog.Int("payment_id", paymentID), slog.String("session_id", session.ID))
	return &CheckoutResult{
		PaymentID:   paymentID,
		SessionID:   session.ID,
		PaymentLink: session.URL,
	}, nil
}

// describeTarget собирает название и описание продукта из оплачиваемого
// курса или урока. Если платёж ссылается на обоих, приоритет у курса.
func (s *PaymentService) describeTarget(ctx context.Context, payment *models.Payment) (string, string, error) {
	if payment.CourseID != nil {
		course, err := s.repo.ReadCourse(ctx, *payment.CourseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", "", ErrTargetNotFound
			}
			return "", "", err
		}
		return course.Title, course.Description, nil
	}
	if payment.LessonID != nil {
		lesson, err := s.repo.ReadLesson(ctx, *payment.LessonID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", "", ErrTargetNotFound
			}
			return "", "", err
		}
		return lesson.Title, lesson.Description, nil
	}
	return "", "", ErrTargetNotFound
}

func (s *PaymentService) createCheckout(ctx context.Context, payment *models.Payment, name, description, customerEmail string) (*paymentprovider.Session, string, string, error) {
	productID, err := s.provider.CreateProduct(ctx, name, description)
	if err != nil {
		return nil, "", "", err
	}
	// Провайдер принимает сумму в минорных единицах валюты.
	priceID, err := s.provider.CreatePrice(ctx, productID, int64(payment.Amount)*100, s.cfg.Currency)
	if err != nil {
		return nil, "", "", err
	}
	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.SessionParams{
		PriceID:       priceID,
		Quantity:      1,
		SuccessURL:    s.cfg.SuccessURL + "/" + strconv.Itoa(payment.ID),
		CancelURL:     s.cfg.CancelURL + "/" + strconv.Itoa(payment.ID),
		CustomerEmail: customerEmail,
		PaymentID:     strconv.Itoa(payment.ID),
	})
	if err != nil {
		return nil, "", "", err
	}
	return session, productID, priceID, nil
}

// Confirm сверяет статус сессии у провайдера и помечает платёж оплаченным,
// если провайдер подтверждает оплату. Повторный вызов для оплаченного
// платежа ничего не меняет.
func (s *PaymentService) Confirm(ctx context.Context, paymentID int) (*models.Payment, error) {
	payment, err := s.repo.ReadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsPaid {
		return payment, nil
	}
	if payment.StripeSessionID == "" {
		return nil, ErrNoCheckoutSession
	}

	session, err := s.provider.RetrieveSession(ctx, payment.StripeSessionID)
	if err != nil {
		return nil, err
	}
	if session.PaymentStatus != "paid" && session.PaymentStatus != "no_payment_required" {
		// Провайдер оплату не подтвердил, платёж остаётся неоплаченным.
		s.log.Info("payment not confirmed by provider",
			slog.Int("payment_id", paymentID),
			slog.String("payment_status", session.PaymentStatus))
		return payment, nil
	}

	if err := s.repo.MarkPaymentPaid(ctx, paymentID); err != nil {
		return nil, err
	}
	payment.IsPaid = true
	s.log.Info("payment confirmed", slog.Int("payment_id", paymentID))
	return payment, nil
}

// Cancel обрабатывает возврат пользователя со страницы отмены оплаты.
// Платёж и сессия остаются как есть: оплату можно завершить позже по той же
// ссылке, пока сессия у провайдера не истекла.
func (s *PaymentService) Cancel(ctx context.Context, paymentID int) (*models.Payment, error) {
	payment, err := s.repo.ReadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	s.log.Info("payment checkout cancelled by user", slog.Int("payment_id", paymentID))
	return payment, nil
}

// List возвращает платежи вызывающего, от новых к старым, с необязательным
// фильтром по способу оплаты.
func (s *PaymentService) List(ctx context.Context, actor authz.Actor, method *string, limit, offset int) ([]*models.Payment, error) {
	if !actor.Authenticated {
		return nil, ErrForbidden
	}
	return s.repo.ListPayments(ctx, actor.UserUID, method, limit, offset)
}

// IsNotFound сообщает, что ошибка означает отсутствие платежа или его цели.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTargetNotFound) || errors.Is(err, repository.ErrNotFound)
}

func checkoutLockKey(paymentID int) string {
	return "payment:checkout:" + strconv.Itoa(paymentID)
}
