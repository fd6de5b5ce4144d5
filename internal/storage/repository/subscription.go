package repository

import (
	"context"
	"fmt"

	"github.com/kopstant/lms-backend/internal/models"
)

// SubscriptionExists проверяет, подписан ли пользователь на курс.
func (s *Storage) SubscriptionExists(ctx context.Context, ownerUID string, courseID int) (bool, error) {
	const op = "storage.SubscriptionExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE owner_uid = $1 AND course_id = $2)`
	if err := s.DB.QueryRowContext(ctx, query, ownerUID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateSubscription создаёт подписку пользователя на курс и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, ownerUID string, courseID int) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	query := `INSERT INTO subscriptions (owner_uid, course_id)
			  VALUES ($1, $2)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, ownerUID, courseID).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// RemoveSubscription удаляет подписку пользователя на курс и возвращает
// количество удалённых строк.
func (s *Storage) RemoveSubscription(ctx context.Context, ownerUID string, courseID int) (int, error) {
	const op = "storage.RemoveSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE owner_uid = $1 AND course_id = $2`
	result, err := s.DB.ExecContext(ctx, query, ownerUID, courseID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListCourseSubscribers возвращает подписчиков курса с их email для рассылки.
func (s *Storage) ListCourseSubscribers(ctx context.Context, courseID int) ([]*models.User, error) {
	const op = "storage.ListCourseSubscribers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.email, u.username
			  FROM subscriptions sub
			  JOIN users u ON u.uid = sub.owner_uid
			  WHERE sub.course_id = $1`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UID, &u.Email, &u.Username); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
