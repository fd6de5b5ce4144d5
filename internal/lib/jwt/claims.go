// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки пары токенов (access + refresh).
// MakerImpl — конкретная реализация с использованием секретного ключа и сроков жизни.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создаёт access-токен с email, ролью, uid и флагом сотрудника
	GenerateToken(email, role, useruid string, isStaff bool) (string, error)
	// GenerateRefreshToken создаёт refresh-токен с увеличенным сроком жизни
	GenerateRefreshToken(email, role, useruid string, isStaff bool) (string, error)
	// ParseToken возвращает *CustomClaims, если токен корректен
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токенов.
type MakerImpl struct {
	secretKey  string        // Секретный ключ для подписи токенов.
	tokenTTL   time.Duration // Время жизни access-токена.
	refreshTTL time.Duration // Время жизни refresh-токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, tokenTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
	}
}
