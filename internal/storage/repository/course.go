package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kopstant/lms-backend/internal/models"
)

// CreateCourse вставляет новый курс и возвращает его ID.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course) (int, error) {
	const op = "storage.CreateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO courses (title, description, owner_uid)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		course.Title, course.Description, course.OwnerUID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadCourse возвращает курс по его ID.
func (s *Storage) ReadCourse(ctx context.Context, id int) (*models.Course, error) {
	const op = "storage.ReadCourse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, owner_uid, created_at, updated_at
			  FROM courses WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Course
	if err := row.Scan(&result.ID, &result.Title, &result.Description,
		&result.OwnerUID, &result.CreatedAt, &result.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// CourseExists проверяет существование курса по его ID.
func (s *Storage) CourseExists(ctx context.Context, id int) (bool, error) {
	const op = "storage.CourseExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM courses WHERE id = $1)`
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// UpdateCourse обновляет данные курса по его ID и возвращает количество изменённых строк.
func (s *Storage) UpdateCourse(ctx context.Context, course models.Course, id int) (int, error) {
	const op = "storage.UpdateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses
			  SET title = $1, description = $2, updated_at = now()
			  WHERE id = $3`
	result, err := s.DB.ExecContext(ctx, query, course.Title, course.Description, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveCourse удаляет курс по ID; уроки курса удаляются каскадно.
func (s *Storage) RemoveCourse(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM courses WHERE id = $1`
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

// ListCourses возвращает список курсов с пагинацией.
func (s *Storage) ListCourses(ctx context.Context, limit, offset int) ([]*models.Course, error) {
	const op = "storage.ListCourses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, description, owner_uid, created_at, updated_at
			  FROM courses
			  ORDER BY id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Course
	for rows.Next() {
		var item models.Course
		if err := rows.Scan(&item.ID, &item.Title, &item.Description,
			&item.OwnerUID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountCourseLessons возвращает количество уроков в курсе.
func (s *Storage) CountCourseLessons(ctx context.Context, courseID int) (int, error) {
	const op = "storage.CountCourseLessons"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM lessons WHERE course_id = $1`
	if err := s.DB.QueryRowContext(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
