// Package multiservice разрешает фичи составного аккаунта в реальные
// аккаунты. Составной аккаунт сам данных не имеет: каждая фича привязана
// к одному из обычных аккаунтов пользователя, и маршрутизатор возвращает
// этот аккаунт диспетчеру.
package multiservice

import (
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
	"github.com/magabrotheeeer/school-aggregator/internal/stores"
)

// AccountProvider отдаёт аккаунт по его локальному идентификатору.
type AccountProvider interface {
	AccountByLocalID(localID string) (models.Account, bool)
}

// Router разрешает привязки фич составных аккаунтов.
type Router struct {
	spaces   *stores.MultiServiceStore
	accounts AccountProvider
	log      *slog.Logger
}

// New создает маршрутизатор мультисервиса.
func New(spaces *stores.MultiServiceStore, accounts AccountProvider, log *slog.Logger) *Router {
	return &Router{spaces: spaces, accounts: accounts, log: log}
}

// GetFeatureAccount возвращает аккаунт, привязанный к фиче составного
// аккаунта. Отсутствие привязки и исчезнувший аккаунт равнозначны:
// второй результат false, ошибок здесь не бывает.
func (r *Router) GetFeatureAccount(feature models.Feature, spaceLocalID string) (models.Account, bool) {
	const op = "multiservice.Router.GetFeatureAccount"

	accountID, ok := r.spaces.GetFeatureAccountID(spaceLocalID, feature)
	if !ok {
		return models.Account{}, false
	}
	account, ok := r.accounts.AccountByLocalID(accountID)
	if !ok {
		r.log.Warn("feature mapping points to a missing account",
			sl.Op(op),
			slog.String("space", spaceLocalID),
			slog.String("feature", string(feature)),
			slog.String("account", accountID),
		)
		return models.Account{}, false
	}
	return account, true
}

// HasFeatureAccountSetup сообщает, привязана ли фича к существующему аккаунту.
func (r *Router) HasFeatureAccountSetup(feature models.Feature, spaceLocalID string) bool {
	_, ok := r.GetFeatureAccount(feature, spaceLocalID)
	return ok
}

// SetFeatureAccount привязывает фичу составного аккаунта к аккаунту.
// Целевой аккаунт не может быть составным: это отсекается здесь, при
// привязке, поэтому разрешённый аккаунт никогда не требует повторного
// разрешения.
func (r *Router) SetFeatureAccount(spaceLocalID string, feature models.Feature, accountLocalID string) error {
	const op = "multiservice.Router.SetFeatureAccount"

	target, ok := r.accounts.AccountByLocalID(accountLocalID)
	if !ok {
		return fmt.Errorf("%s: account %s not found", op, accountLocalID)
	}
	if isComposite(target.Service) {
		return fmt.Errorf("%s: account %s is composite and cannot serve a feature", op, accountLocalID)
	}
	if !r.spaces.SetFeatureAccount(spaceLocalID, feature, accountLocalID) {
		return fmt.Errorf("%s: multi-service space %s not found", op, spaceLocalID)
	}
	return nil
}

func isComposite(service models.Service) bool {
	return service == models.ServiceMulti || service == models.ServiceMultiSpace
}
