package models

import "time"

// User — пользователь приложения (регистрация устройства). Один пользователь
// владеет несколькими аккаунтами сервисов и составными аккаунтами.
type User struct {
	UID          string    `json:"uid"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
