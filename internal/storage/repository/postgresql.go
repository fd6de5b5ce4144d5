// Package repository реализует хранилище данных на основе PostgreSQL
// для пользователей, курсов, уроков, подписок и платежей. Предоставляет
// методы создания, чтения, обновления и удаления записей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует.
var ErrNotFound = errors.New("not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	return storage.CheckDatabaseReady(context.Background())
}

// CheckDatabaseReady проверяет, что схема применена и база отвечает.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'courses'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table courses missing or query error: %w", err)
	}
	return nil
}
