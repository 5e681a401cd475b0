// Package jwt реализует генерацию и парсинг JWT токенов, которыми мобильный
// клиент авторизуется в HTTP API после регистрации устройства.
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims расширяет стандартные claims JWT именем пользователя приложения.
type CustomClaims struct {
	Username             string `json:"username"` // Имя пользователя приложения
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создаёт токен для пользователя приложения.
	GenerateToken(username string) (string, error)
	// ParseToken возвращает *CustomClaims, если токен корректен.
	ParseToken(tokenStr string) (*CustomClaims, error)
}
