// Package dispatcher маршрутизирует операции выборки данных к адаптеру,
// соответствующему сервису аккаунта, и на успехе записывает результат
// в кеш-хранилища. Для составных аккаунтов целевой аккаунт фичи разрешается
// через маршрутизатор мультисервиса, после чего диспетчер рекурсивно вызывает
// сам себя ровно один раз: разрешённый аккаунт не может быть составным,
// это гарантируется при привязке.
package dispatcher

import (
	"context"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Adapter — минимальный контракт адаптера внешнего сервиса. Конкретные
// возможности объявляются отдельными интерфейсами: адаптер реализует только
// те, которые его сервис действительно поддерживает, остальное диспетчер
// превращает в NotImplementedError.
type Adapter interface {
	Service() models.Service
}

// MenuProvider отдаёт меню столовой на день.
type MenuProvider interface {
	Menu(ctx context.Context, account models.Account, date time.Time) (models.Menu, error)
}

// EvaluationsProvider отдаёт периоды и оценки компетенций.
type EvaluationsProvider interface {
	EvaluationPeriods(ctx context.Context, account models.Account) ([]models.Period, error)
	Evaluations(ctx context.Context, account models.Account, periodName string) ([]models.Evaluation, error)
}

// NewsProvider отдаёт новости и помечает их прочитанными на стороне сервиса.
type NewsProvider interface {
	News(ctx context.Context, account models.Account) ([]models.Information, error)
	SetNewsRead(ctx context.Context, account models.Account, informationID string, read bool) error
}

// AttendanceProvider отдаёт события посещаемости за период.
type AttendanceProvider interface {
	Attendance(ctx context.Context, account models.Account, periodName string) (models.Attendance, error)
}

// HomeworkProvider отдаёт домашние задания за учебную неделю.
type HomeworkProvider interface {
	Homeworks(ctx context.Context, account models.Account, epochWeek int) ([]models.Homework, error)
}

// ReservationProvider отдаёт историю операций и балансы счёта столовой.
type ReservationProvider interface {
	ReservationHistory(ctx context.Context, account models.Account) ([]models.ReservationHistory, error)
	Balances(ctx context.Context, account models.Account) ([]models.Balance, error)
}

// ProfilePictureProvider отдаёт аватар пользователя (base64 или URL).
type ProfilePictureProvider interface {
	ProfilePicture(ctx context.Context, account models.Account) (string, error)
}

// Reloader повторно авторизуется по сохранённым учётным данным и возвращает
// новый набор сессионных данных с теми же ключами, не мутируя старый.
type Reloader interface {
	Reload(ctx context.Context, account models.Account) (models.Authentication, error)
}

// Registry — статический реестр адаптеров, собираемый при старте приложения.
type Registry struct {
	adapters map[models.Service]Adapter
}

// NewRegistry создает реестр из переданных адаптеров.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[models.Service]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Service()] = a
	}
	return r
}

// Lookup возвращает адаптер сервиса. Второй результат false — адаптер
// не зарегистрирован.
func (r *Registry) Lookup(service models.Service) (Adapter, bool) {
	a, ok := r.adapters[service]
	return a, ok
}
