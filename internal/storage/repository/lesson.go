package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kopstant/lms-backend/internal/models"
)

// CreateLesson вставляет новый урок и возвращает его ID.
func (s *Storage) CreateLesson(ctx context.Context, lesson models.Lesson) (int, error) {
	const op = "storage.CreateLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO lessons (title, description, video_url, course_id, owner_uid)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		lesson.Title, lesson.Description, lesson.VideoURL, lesson.CourseID,
		lesson.OwnerUID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadLesson возвращает урок по его ID.
func (s *Storage) ReadLesson(ctx context.Context, id int) (*models.Lesson, error) {
	const op = "storage.ReadLesson"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, video_url, course_id, owner_uid, created_at
			  FROM lessons WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Lesson
	if err := row.Scan(&result.ID, &result.Title, &result.Description,
		&result.VideoURL, &result.CourseID, &result.OwnerUID, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateLesson обновляет данные урока по его ID и возвращает количество изменённых строк.
func (s *Storage) UpdateLesson(ctx context.Context, lesson models.Lesson, id int) (int, error) {
	const op = "storage.UpdateLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE lessons
			  SET title = $1, description = $2, video_url = $3
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query,
		lesson.Title, lesson.Description, lesson.VideoURL, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveLesson удаляет урок по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveLesson(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM lessons WHERE id = $1`
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

// ListLessons возвращает список уроков с пагинацией.
func (s *Storage) ListLessons(ctx context.Context, limit, offset int) ([]*models.Lesson, error) {
	const op = "storage.ListLessons"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, video_url, course_id, owner_uid, created_at
			  FROM lessons
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Lesson
	for rows.Next() {
		var item models.Lesson
		if err := rows.Scan(&item.ID, &item.Title, &item.Description,
			&item.VideoURL, &item.CourseID, &item.OwnerUID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
