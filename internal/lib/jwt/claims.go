// Package jwt реализует генерацию и парсинг JWT токенов сессии.
//
// Токен несет только идентификатор пользователя и срок действия:
// все остальные данные (роль, активность аккаунта) резолвятся из хранилища
// на каждый защищенный запрос.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создает токен сессии для пользователя с указанным UID.
	GenerateToken(userUID string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен корректен и не истек.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// CustomClaims описывает данные, хранящиеся в JWT.
type CustomClaims struct {
	UserUID              string `json:"user_uid"` // Идентификатор пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
