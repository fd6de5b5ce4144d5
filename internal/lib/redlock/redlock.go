// Package redlock реализует распределённые блокировки поверх redis.
// Используется для защиты от повторной инициализации оплаты одного платежа.
package redlock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// Locker выдаёт блокировки по ключу.
type Locker struct {
	rs *redsync.Redsync
}

// New создаёт Locker поверх клиента redis.
func New(client *redis.Client) *Locker {
	pool := goredis.NewPool(client)
	return &Locker{rs: redsync.New(pool)}
}

// Acquire пытается взять блокировку по ключу ровно один раз, без ожидания.
// Возвращает функцию освобождения или ошибку, если блокировка уже занята.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func() error, error) {
	const op = "redlock.Acquire"
	mu := l.rs.NewMutex(key, redsync.WithExpiry(ttl), redsync.WithTries(1))
	if err := mu.TryLockContext(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return func() error {
		_, err := mu.UnlockContext(ctx)
		return err
	}, nil
}
