package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kopstant/lms-backend/internal/models"
)

// CreatePayment вставляет новый платёж-черновик и возвращает его ID.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (user_uid, course_id, lesson_id, amount, payment_method, is_paid)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		payment.UserUID, payment.CourseID, payment.LessonID, payment.Amount,
		payment.PaymentMethod, payment.IsPaid).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadPayment возвращает платёж по его ID.
func (s *Storage) ReadPayment(ctx context.Context, id int) (*models.Payment, error) {
	const op = "storage.ReadPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, course_id, lesson_id, amount, payment_method,
			      COALESCE(stripe_product_id, ''), COALESCE(stripe_price_id, ''),
			      COALESCE(stripe_session_id, ''), COALESCE(payment_link, ''),
			      is_paid, created_at
			  FROM payments WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Payment
	if err := row.Scan(&result.ID, &result.UserUID, &result.CourseID, &result.LessonID,
		&result.Amount, &result.PaymentMethod, &result.StripeProductID,
		&result.StripePriceID, &result.StripeSessionID, &result.PaymentLink,
		&result.IsPaid, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// AttachCheckoutSession сохраняет реквизиты внешней сессии оплаты
// и переводит платёж в метод stripe.
func (s *Storage) AttachCheckoutSession(ctx context.Context, id int, productID, priceID, sessionID, link string) error {
	const op = "storage.AttachCheckoutSession"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET stripe_product_id = $1, stripe_price_id = $2,
			      stripe_session_id = $3, payment_link = $4, payment_method = $5
			  WHERE id = $6`
	_, err := s.DB.ExecContext(ctx, query, productID, priceID, sessionID, link,
		models.PaymentMethodStripe, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkPaymentPaid помечает платёж оплаченным.
func (s *Storage) MarkPaymentPaid(ctx context.Context, id int) error {
	const op = "storage.MarkPaymentPaid"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments SET is_paid = true WHERE id = $1`
	_, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemovePayment удаляет платёж по ID и возвращает количество удалённых строк.
// Используется для зачистки черновика после сбоя у провайдера.
func (s *Storage) RemovePayment(ctx context.Context, id int) (int, error) {
	const op = "storage.RemovePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM payments WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListPayments возвращает платежи пользователя, от новых к старым,
// с необязательным фильтром по способу оплаты.
func (s *Storage) ListPayments(ctx context.Context, userUID string, method *string, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, course_id, lesson_id, amount, payment_method,
			      COALESCE(stripe_product_id, ''), COALESCE(stripe_price_id, ''),
			      COALESCE(stripe_session_id, ''), COALESCE(payment_link, ''),
			      is_paid, created_at
			  FROM payments
			  WHERE user_uid = $1
			    AND ($2::text IS NULL OR payment_method = $2)
			  ORDER BY created_at DESC
			  LIMIT $3 OFFSET $4`
	rows, err := s.DB.QueryContext(ctx, query, userUID, method, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var item models.Payment
		if err := rows.Scan(&item.ID, &item.UserUID, &item.CourseID, &item.LessonID,
			&item.Amount, &item.PaymentMethod, &item.StripeProductID,
			&item.StripePriceID, &item.StripeSessionID, &item.PaymentLink,
			&item.IsPaid, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
