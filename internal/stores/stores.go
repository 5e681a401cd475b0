// Package stores содержит локальные кеш-хранилища по доменам данных:
// оценки компетенций, домашние задания, новости, посещаемость и настройки
// составных аккаунтов. Хранилище держит в памяти отдельный вид на каждый
// аккаунт и сохраняет его через key-value персистентность под ключом с
// LocalID владельца. Виды разных аккаунтов изолированы: каждая операция
// явно принимает LocalID, и параллельные запросы разных пользователей
// не видят данных друг друга.
//
// Записи перезаписываются целиком при каждом обновлении и не устаревают сами:
// решение о свежести принимает вызывающая сторона по LastUpdated. При гонке
// двух обновлений одного ключа побеждает завершившееся последним.
package stores

import "time"

// KV — интерфейс персистентности хранилищ. Реализуется internal/cache.
type KV interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни (0 — бессрочно).
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}
