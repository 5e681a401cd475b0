// Package aggregator связывает HTTP-обработчики с диспетчером и
// кеш-хранилищами: разрешает аккаунт по LocalID, обновляет его вид кеша
// и возвращает свежие данные после обновления.
package aggregator

import (
	"context"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/dispatcher"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
	"github.com/magabrotheeeer/school-aggregator/internal/stores"
)

// AccountGetter возвращает аккаунт по локальному идентификатору.
type AccountGetter interface {
	Get(ctx context.Context, localID string) (models.Account, error)
}

// Service выполняет операции выборки данных от имени аккаунта.
type Service struct {
	accounts    AccountGetter
	dispatcher  *dispatcher.Dispatcher
	evaluations *stores.EvaluationsStore
	attendance  *stores.AttendanceStore
	news        *stores.NewsStore
	homeworks   *stores.HomeworkStore
}

// New создает новый экземпляр Service.
func New(
	accounts AccountGetter,
	d *dispatcher.Dispatcher,
	evaluations *stores.EvaluationsStore,
	attendance *stores.AttendanceStore,
	news *stores.NewsStore,
	homeworks *stores.HomeworkStore,
) *Service {
	return &Service{
		accounts:    accounts,
		dispatcher:  d,
		evaluations: evaluations,
		attendance:  attendance,
		news:        news,
		homeworks:   homeworks,
	}
}

// Menu возвращает меню столовой аккаунта на день.
func (s *Service) Menu(ctx context.Context, localID string, date time.Time) (models.Menu, error) {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return models.Menu{}, err
	}
	return s.dispatcher.GetMenu(ctx, account, date)
}

// RefreshEvaluationPeriods обновляет периоды оценок и возвращает их
// вместе с именем периода по умолчанию.
func (s *Service) RefreshEvaluationPeriods(ctx context.Context, localID string) ([]models.Period, string, error) {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return nil, "", err
	}
	if err := s.dispatcher.UpdateEvaluationPeriodsInCache(ctx, account); err != nil {
		return nil, "", err
	}
	list, def := s.evaluations.Periods(account.LocalID)
	return list, def, nil
}

// RefreshEvaluations обновляет оценки периода и возвращает их.
func (s *Service) RefreshEvaluations(ctx context.Context, localID, periodName string) ([]models.Evaluation, error) {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	if err := s.dispatcher.UpdateEvaluationsInCache(ctx, account, periodName); err != nil {
		return nil, err
	}
	return s.evaluations.Evaluations(account.LocalID, periodName), nil
}

// RefreshNews обновляет новости и возвращает их.
func (s *Service) RefreshNews(ctx context.Context, localID string) ([]models.Information, error) {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	if err := s.dispatcher.UpdateNewsInCache(ctx, account); err != nil {
		return nil, err
	}
	return s.news.News(account.LocalID), nil
}

// MarkNewsRead помечает новость прочитанной у сервиса и в кеше.
func (s *Service) MarkNewsRead(ctx context.Context, localID, informationID string, read bool) error {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return err
	}
	return s.dispatcher.SetNewsRead(ctx, account, informationID, read)
}

// RefreshAttendance обновляет посещаемость периода и возвращает её.
func (s *Service) RefreshAttendance(ctx context.Context, localID, periodName string) (models.Attendance, error) {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return models.Attendance{}, err
	}
	if err := s.dispatcher.UpdateAttendanceInCache(ctx, account, periodName); err != nil {
		return models.Attendance{}, err
	}
	attendance, _ := s.attendance.Attendance(account.LocalID, periodName)
	return attendance, nil
}

// RefreshHomeworks обновляет домашние задания недели и возвращает их.
func (s *Service) RefreshHomeworks(ctx context.Context, localID string, epochWeek int) ([]models.Homework, error) {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	if err := s.dispatcher.UpdateHomeworksInCache(ctx, account, epochWeek); err != nil {
		return nil, err
	}
	return s.homeworks.Homeworks(account.LocalID, epochWeek), nil
}

// ReservationHistory возвращает историю операций счёта столовой.
func (s *Service) ReservationHistory(ctx context.Context, localID string) ([]models.ReservationHistory, error) {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	return s.dispatcher.ReservationHistoryFromExternal(ctx, account)
}

// Balances возвращает балансы счетов столовой.
func (s *Service) Balances(ctx context.Context, localID string) ([]models.Balance, error) {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return nil, err
	}
	return s.dispatcher.GetBalances(ctx, account)
}

// ProfilePicture возвращает аватар пользователя у сервиса.
func (s *Service) ProfilePicture(ctx context.Context, localID string) (string, error) {
	account, err := s.accounts.Get(ctx, localID)
	if err != nil {
		return "", err
	}
	return s.dispatcher.GetDefaultProfilePicture(ctx, account)
}
