package models

import "fmt"

// UnauthenticatedError возвращается адаптером, если у аккаунта отсутствуют
// сессионные данные, необходимые сервису. Выбрасывается до любого сетевого вызова.
type UnauthenticatedError struct {
	Service Service
}

func (e *UnauthenticatedError) Error() string {
	return fmt.Sprintf("account is not authenticated for service %s", e.Service)
}

// NotImplementedError возвращается диспетчером, если для сервиса аккаунта
// не зарегистрирован адаптер или адаптер не поддерживает запрошенную операцию.
type NotImplementedError struct {
	Operation string
	Service   Service
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("operation %s is not implemented for service %s", e.Operation, e.Service)
}

// FeatureNotConfiguredError возвращается, когда фича составного аккаунта
// не привязана ни к одному аккаунту. Для UI это повод показать экран настройки,
// а не повторять запрос.
type FeatureNotConfiguredError struct {
	Feature Feature
}

func (e *FeatureNotConfiguredError) Error() string {
	return fmt.Sprintf("no service set in multi-service space for feature %s", e.Feature)
}
