package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/events"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/periods"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
	"github.com/magabrotheeeer/school-aggregator/internal/stores"
)

// FeatureRouter разрешает фичу составного аккаунта в реальный аккаунт.
type FeatureRouter interface {
	GetFeatureAccount(feature models.Feature, spaceLocalID string) (models.Account, bool)
}

// Dispatcher выполняет операции выборки данных для аккаунта и на успехе
// записывает результат в кеш-хранилища. Ошибка операции кеш не трогает.
type Dispatcher struct {
	registry    *Registry
	router      FeatureRouter
	evaluations *stores.EvaluationsStore
	attendance  *stores.AttendanceStore
	news        *stores.NewsStore
	homeworks   *stores.HomeworkStore
	notifier    events.Notifier
	log         *slog.Logger
}

// New создает диспетчер.
func New(
	registry *Registry,
	router FeatureRouter,
	evaluations *stores.EvaluationsStore,
	attendance *stores.AttendanceStore,
	news *stores.NewsStore,
	homeworks *stores.HomeworkStore,
	notifier events.Notifier,
	log *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		registry:    registry,
		router:      router,
		evaluations: evaluations,
		attendance:  attendance,
		news:        news,
		homeworks:   homeworks,
		notifier:    notifier,
		log:         log,
	}
}

// SetRouter подключает маршрутизатор составных аккаунтов. Маршрутизатору
// нужен доступ к аккаунтам, а сервису аккаунтов нужен диспетчер, поэтому
// маршрутизатор подставляется после создания обоих.
func (d *Dispatcher) SetRouter(router FeatureRouter) {
	d.router = router
}

// passive сообщает, что аккаунт не имеет внешнего сервиса и любая операция
// выборки для него — пустой результат без ошибки.
func passive(service models.Service) bool {
	return service == models.ServiceLocal || service == models.ServiceMulti
}

// resolve возвращает адаптер сервиса аккаунта или NotImplementedError.
func (d *Dispatcher) resolve(account models.Account, operation string) (Adapter, error) {
	adapter, ok := d.registry.Lookup(account.Service)
	if !ok {
		return nil, &models.NotImplementedError{Operation: operation, Service: account.Service}
	}
	return adapter, nil
}

// featureAccount разрешает целевой аккаунт фичи составного аккаунта.
// Разрешённый аккаунт не бывает составным, это гарантируется при привязке,
// поэтому рекурсия после разрешения всегда ровно одна.
func (d *Dispatcher) featureAccount(feature models.Feature, space models.Account) (models.Account, error) {
	target, ok := d.router.GetFeatureAccount(feature, space.LocalID)
	if !ok {
		return models.Account{}, &models.FeatureNotConfiguredError{Feature: feature}
	}
	return target, nil
}

func (d *Dispatcher) notify(accountLocalID, domain string) {
	const op = "dispatcher.notify"
	if err := d.notifier.CacheRefreshed(accountLocalID, domain); err != nil {
		d.log.Warn("failed to publish cache refresh event", sl.Op(op), sl.Err(err))
	}
}

// GetMenu возвращает меню столовой на день. Меню в кеш не пишется:
// оно привязано к дате и запрашивается по месту.
func (d *Dispatcher) GetMenu(ctx context.Context, account models.Account, date time.Time) (models.Menu, error) {
	const op = "dispatcher.GetMenu"

	empty := models.Menu{Date: date.UTC().Truncate(24 * time.Hour).UnixMilli()}
	if passive(account.Service) || account.Service == models.ServiceMultiSpace {
		return empty, nil
	}
	adapter, err := d.resolve(account, "Menu")
	if err != nil {
		return empty, err
	}
	provider, ok := adapter.(MenuProvider)
	if !ok {
		return empty, &models.NotImplementedError{Operation: "Menu", Service: account.Service}
	}
	menu, err := provider.Menu(ctx, account, date)
	if err != nil {
		d.log.Error("failed to fetch menu", sl.Op(op), sl.Err(err))
		return empty, err
	}
	return menu, nil
}

// UpdateEvaluationPeriodsInCache обновляет периоды оценок в кеше. Периодом
// по умолчанию становится период, содержащий текущий момент, иначе первый.
func (d *Dispatcher) UpdateEvaluationPeriodsInCache(ctx context.Context, account models.Account) error {
	return d.updateEvaluationPeriods(ctx, account, account.LocalID)
}

// cacheID во всех операциях ниже — LocalID аккаунта, под ключом которого
// лежат кешированные данные. Для составного аккаунта это LocalID самого
// составного аккаунта: рекурсия после разрешения фичи меняет account на
// целевой, но записи продолжают идти в вид запросившего.
func (d *Dispatcher) updateEvaluationPeriods(ctx context.Context, account models.Account, cacheID string) error {
	const op = "dispatcher.updateEvaluationPeriods"

	if passive(account.Service) {
		return nil
	}
	if account.Service == models.ServiceMultiSpace {
		target, err := d.featureAccount(models.FeatureEvaluations, account)
		if err != nil {
			return err
		}
		return d.updateEvaluationPeriods(ctx, target, cacheID)
	}

	adapter, err := d.resolve(account, "EvaluationPeriods")
	if err != nil {
		return err
	}
	provider, ok := adapter.(EvaluationsProvider)
	if !ok {
		return &models.NotImplementedError{Operation: "EvaluationPeriods", Service: account.Service}
	}
	list, err := provider.EvaluationPeriods(ctx, account)
	if err != nil {
		d.log.Error("failed to fetch evaluation periods", sl.Op(op), sl.Err(err))
		return err
	}
	if len(list) == 0 {
		return nil
	}
	def, _ := periods.Select(list, time.Now())
	if err := d.evaluations.UpdatePeriods(cacheID, list, def.Name); err != nil {
		return err
	}
	d.notify(cacheID, "evaluations")
	return nil
}

// UpdateEvaluationsInCache обновляет оценки одного периода в кеше.
// Для составного аккаунта целевому аккаунту передаётся то же имя периода,
// что запросил вызывающий.
func (d *Dispatcher) UpdateEvaluationsInCache(ctx context.Context, account models.Account, periodName string) error {
	return d.updateEvaluations(ctx, account, account.LocalID, periodName)
}

func (d *Dispatcher) updateEvaluations(ctx context.Context, account models.Account, cacheID, periodName string) error {
	const op = "dispatcher.updateEvaluations"

	if passive(account.Service) {
		return nil
	}
	if account.Service == models.ServiceMultiSpace {
		target, err := d.featureAccount(models.FeatureEvaluations, account)
		if err != nil {
			return err
		}
		return d.updateEvaluations(ctx, target, cacheID, periodName)
	}

	adapter, err := d.resolve(account, "Evaluations")
	if err != nil {
		return err
	}
	provider, ok := adapter.(EvaluationsProvider)
	if !ok {
		return &models.NotImplementedError{Operation: "Evaluations", Service: account.Service}
	}
	evaluations, err := provider.Evaluations(ctx, account, periodName)
	if err != nil {
		d.log.Error("failed to fetch evaluations", sl.Op(op), sl.Err(err))
		return err
	}
	d.evaluations.UpdateEvaluations(cacheID, periodName, evaluations)
	d.notify(cacheID, "evaluations")
	return nil
}

// UpdateNewsInCache обновляет новости в кеше.
func (d *Dispatcher) UpdateNewsInCache(ctx context.Context, account models.Account) error {
	return d.updateNews(ctx, account, account.LocalID)
}

func (d *Dispatcher) updateNews(ctx context.Context, account models.Account, cacheID string) error {
	const op = "dispatcher.updateNews"

	if passive(account.Service) {
		return nil
	}
	if account.Service == models.ServiceMultiSpace {
		target, err := d.featureAccount(models.FeatureNews, account)
		if err != nil {
			return err
		}
		return d.updateNews(ctx, target, cacheID)
	}

	adapter, err := d.resolve(account, "News")
	if err != nil {
		return err
	}
	provider, ok := adapter.(NewsProvider)
	if !ok {
		return &models.NotImplementedError{Operation: "News", Service: account.Service}
	}
	items, err := provider.News(ctx, account)
	if err != nil {
		d.log.Error("failed to fetch news", sl.Op(op), sl.Err(err))
		return err
	}
	d.news.UpdateNews(cacheID, items)
	d.notify(cacheID, "news")
	return nil
}

// SetNewsRead помечает новость прочитанной на стороне сервиса и в кеше.
// Кеш меняется только после успеха сервиса.
func (d *Dispatcher) SetNewsRead(ctx context.Context, account models.Account, informationID string, read bool) error {
	return d.setNewsRead(ctx, account, account.LocalID, informationID, read)
}

func (d *Dispatcher) setNewsRead(ctx context.Context, account models.Account, cacheID, informationID string, read bool) error {
	const op = "dispatcher.setNewsRead"

	if passive(account.Service) {
		d.news.SetRead(cacheID, informationID, read)
		return nil
	}
	if account.Service == models.ServiceMultiSpace {
		target, err := d.featureAccount(models.FeatureNews, account)
		if err != nil {
			return err
		}
		return d.setNewsRead(ctx, target, cacheID, informationID, read)
	}

	adapter, err := d.resolve(account, "SetNewsRead")
	if err != nil {
		return err
	}
	provider, ok := adapter.(NewsProvider)
	if !ok {
		return &models.NotImplementedError{Operation: "SetNewsRead", Service: account.Service}
	}
	if err := provider.SetNewsRead(ctx, account, informationID, read); err != nil {
		d.log.Error("failed to mark news read", sl.Op(op), sl.Err(err))
		return err
	}
	d.news.SetRead(cacheID, informationID, read)
	d.notify(cacheID, "news")
	return nil
}

// UpdateAttendanceInCache обновляет события посещаемости периода в кеше.
func (d *Dispatcher) UpdateAttendanceInCache(ctx context.Context, account models.Account, periodName string) error {
	return d.updateAttendance(ctx, account, account.LocalID, periodName)
}

func (d *Dispatcher) updateAttendance(ctx context.Context, account models.Account, cacheID, periodName string) error {
	const op = "dispatcher.updateAttendance"

	if passive(account.Service) {
		return nil
	}
	if account.Service == models.ServiceMultiSpace {
		target, err := d.featureAccount(models.FeatureAttendance, account)
		if err != nil {
			return err
		}
		return d.updateAttendance(ctx, target, cacheID, periodName)
	}

	adapter, err := d.resolve(account, "Attendance")
	if err != nil {
		return err
	}
	provider, ok := adapter.(AttendanceProvider)
	if !ok {
		return &models.NotImplementedError{Operation: "Attendance", Service: account.Service}
	}
	attendance, err := provider.Attendance(ctx, account, periodName)
	if err != nil {
		d.log.Error("failed to fetch attendance", sl.Op(op), sl.Err(err))
		return err
	}
	d.attendance.UpdateAttendance(cacheID, periodName, attendance)
	d.notify(cacheID, "attendance")
	return nil
}

// UpdateHomeworksInCache обновляет домашние задания учебной недели в кеше.
// Пользовательские задания недели при этом сохраняются.
func (d *Dispatcher) UpdateHomeworksInCache(ctx context.Context, account models.Account, epochWeek int) error {
	return d.updateHomeworks(ctx, account, account.LocalID, epochWeek)
}

func (d *Dispatcher) updateHomeworks(ctx context.Context, account models.Account, cacheID string, epochWeek int) error {
	const op = "dispatcher.updateHomeworks"

	if passive(account.Service) {
		return nil
	}
	if account.Service == models.ServiceMultiSpace {
		target, err := d.featureAccount(models.FeatureHomeworks, account)
		if err != nil {
			return err
		}
		return d.updateHomeworks(ctx, target, cacheID, epochWeek)
	}

	adapter, err := d.resolve(account, "Homeworks")
	if err != nil {
		return err
	}
	provider, ok := adapter.(HomeworkProvider)
	if !ok {
		return &models.NotImplementedError{Operation: "Homeworks", Service: account.Service}
	}
	homeworks, err := provider.Homeworks(ctx, account, epochWeek)
	if err != nil {
		d.log.Error("failed to fetch homeworks", sl.Op(op), sl.Err(err))
		return err
	}
	d.homeworks.UpdateHomeworks(cacheID, epochWeek, homeworks)
	d.notify(cacheID, "homeworks")
	return nil
}

// ReservationHistoryFromExternal возвращает историю операций счёта столовой.
func (d *Dispatcher) ReservationHistoryFromExternal(ctx context.Context, account models.Account) ([]models.ReservationHistory, error) {
	const op = "dispatcher.ReservationHistoryFromExternal"

	if passive(account.Service) || account.Service == models.ServiceMultiSpace {
		return []models.ReservationHistory{}, nil
	}
	adapter, err := d.resolve(account, "ReservationHistory")
	if err != nil {
		return nil, err
	}
	provider, ok := adapter.(ReservationProvider)
	if !ok {
		return nil, &models.NotImplementedError{Operation: "ReservationHistory", Service: account.Service}
	}
	history, err := provider.ReservationHistory(ctx, account)
	if err != nil {
		d.log.Error("failed to fetch reservation history", sl.Op(op), sl.Err(err))
		return nil, err
	}
	return history, nil
}

// GetBalances возвращает балансы счетов столовой.
func (d *Dispatcher) GetBalances(ctx context.Context, account models.Account) ([]models.Balance, error) {
	const op = "dispatcher.GetBalances"

	if passive(account.Service) || account.Service == models.ServiceMultiSpace {
		return []models.Balance{}, nil
	}
	adapter, err := d.resolve(account, "Balances")
	if err != nil {
		return nil, err
	}
	provider, ok := adapter.(ReservationProvider)
	if !ok {
		return nil, &models.NotImplementedError{Operation: "Balances", Service: account.Service}
	}
	balances, err := provider.Balances(ctx, account)
	if err != nil {
		d.log.Error("failed to fetch balances", sl.Op(op), sl.Err(err))
		return nil, err
	}
	return balances, nil
}

// GetDefaultProfilePicture возвращает аватар пользователя у сервиса.
func (d *Dispatcher) GetDefaultProfilePicture(ctx context.Context, account models.Account) (string, error) {
	const op = "dispatcher.GetDefaultProfilePicture"

	if passive(account.Service) || account.Service == models.ServiceMultiSpace {
		return "", nil
	}
	adapter, err := d.resolve(account, "ProfilePicture")
	if err != nil {
		return "", err
	}
	provider, ok := adapter.(ProfilePictureProvider)
	if !ok {
		return "", &models.NotImplementedError{Operation: "ProfilePicture", Service: account.Service}
	}
	picture, err := provider.ProfilePicture(ctx, account)
	if err != nil {
		d.log.Error("failed to fetch profile picture", sl.Op(op), sl.Err(err))
		return "", err
	}
	return picture, nil
}

// Reload повторно авторизует аккаунт и возвращает свежие сессионные данные.
// Аккаунты без внешнего сервиса возвращают свои данные без изменений.
func (d *Dispatcher) Reload(ctx context.Context, account models.Account) (models.Authentication, error) {
	const op = "dispatcher.Reload"

	if passive(account.Service) || account.Service == models.ServiceMultiSpace {
		return account.Auth, nil
	}
	adapter, err := d.resolve(account, "Reload")
	if err != nil {
		return models.Authentication{}, err
	}
	reloader, ok := adapter.(Reloader)
	if !ok {
		return models.Authentication{}, &models.NotImplementedError{Operation: "Reload", Service: account.Service}
	}
	auth, err := reloader.Reload(ctx, account)
	if err != nil {
		d.log.Error("failed to reload session", sl.Op(op), sl.Err(err))
		return models.Authentication{}, err
	}
	return auth, nil
}
