package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Email                string `json:"email"`    // Электронная почта (логин)
	Role                 string `json:"role"`     // Роль пользователя
	UserUID              string `json:"user_uid"` // Уникальный идентификатор пользователя
	IsStaff              bool   `json:"is_staff"` // Флаг сотрудника
	TokenType            string `json:"token_type"`
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// GenerateToken создает access-токен с заданными claims, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(email, role, useruid string, isStaff bool) (string, error) {
	return j.generate(email, role, useruid, isStaff, "access", j.tokenTTL)
}

// GenerateRefreshToken создает refresh-токен с теми же claims и увеличенным TTL.
func (j *MakerImpl) GenerateRefreshToken(email, role, useruid string, isStaff bool) (string, error) {
	return j.generate(email, role, useruid, isStaff, "refresh", j.refreshTTL)
}

func (j *MakerImpl) generate(email, role, useruid string, isStaff bool, tokenType string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		Email:     email,
		Role:      role,
		UserUID:   useruid,
		IsStaff:   isStaff,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
