// Package resettoken реализует одноразовые токены восстановления пароля.
//
// Наружу уходит случайный токен в hex-кодировке, в базе хранится только
// его SHA-256 хэш: утечка базы не дает рабочих токенов.
package resettoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 32

// New генерирует случайный токен и возвращает его вместе с хэшем для хранения.
func New() (raw string, hash string, err error) {
	const op = "resettoken.New"
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	raw = hex.EncodeToString(buf)
	return raw, Hash(raw), nil
}

// Hash возвращает SHA-256 хэш токена в hex-кодировке.
// Используется и при выдаче токена, и при его проверке.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
