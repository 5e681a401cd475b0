// Package models содержит доменные структуры, общие для всех школьных сервисов:
// аккаунты, оценки, посещаемость, меню столовой, новости и история платежей.
// Адаптеры приводят ответы внешних API к этим структурам, всё остальное
// приложение работает только с ними.
package models

// Service — дискриминант полиморфного аккаунта. Каждое значение соответствует
// одному внешнему школьному сервису либо специальному локальному варианту.
type Service string

// Поддерживаемые сервисы.
const (
	ServicePronote      Service = "pronote"
	ServiceEcoleDirecte Service = "ecoledirecte"
	ServiceSkolengo     Service = "skolengo"
	ServiceTurboself    Service = "turboself"
	ServiceAlise        Service = "alise"
	ServiceARD          Service = "ard"
	ServiceIzly         Service = "izly"
	ServiceIUTLannion   Service = "iutlannion"
	// ServiceLocal — демо-аккаунт без внешнего API, все операции возвращают пустые данные.
	ServiceLocal Service = "local"
	// ServiceMulti — устаревший составной аккаунт, данные собираются из суб-аккаунтов.
	ServiceMulti Service = "multi"
	// ServiceMultiSpace — составной аккаунт, в котором каждая фича (оценки,
	// новости и т.д.) делегируется отдельному привязанному аккаунту.
	ServiceMultiSpace Service = "multispace"
)

// Authentication — непрозрачный набор сессионных данных и учётных данных.
// Состав заполненных полей зависит от сервиса: адаптер сам проверяет,
// что нужные ему поля присутствуют.
type Authentication struct {
	InstanceURL     string `json:"instance_url,omitempty"`     // адрес инстанса (Pronote, ScoDoc)
	Username        string `json:"username,omitempty"`         // логин для повторной авторизации
	Password        string `json:"password,omitempty"`         // пароль для повторной авторизации
	Token           string `json:"token,omitempty"`            // текущий токен сессии
	RefreshToken    string `json:"refresh_token,omitempty"`    // токен обновления сессии
	DeviceID        string `json:"device_id,omitempty"`        // идентификатор устройства (Izly)
	CardNumber      string `json:"card_number,omitempty"`      // номер карты столовой (Turboself, ARD, Alise)
	EstablishmentID string `json:"establishment_id,omitempty"` // идентификатор учебного заведения
}

// Personalization — настройки отображения аккаунта, управляются экранами
// настроек и не влияют на выборку данных.
type Personalization struct {
	Color             string   `json:"color,omitempty"`
	Tabs              []string `json:"tabs,omitempty"`
	ProfilePictureB64 string   `json:"profile_picture_b64,omitempty"`
}

// Account представляет один настроенный аккаунт внешнего сервиса.
// LocalID генерируется один раз при создании и никогда не переиспользуется.
type Account struct {
	LocalID    string          `json:"local_id"`
	Service    Service         `json:"service"`
	IsExternal bool            `json:"is_external"` // вторичный (привязанный) аккаунт, а не основной школьный
	Name       string          `json:"name"`
	SchoolName string          `json:"school_name,omitempty"`
	Auth       Authentication  `json:"auth"`
	Personal   Personalization `json:"personalization"`
	// ServiceData — сервис-специфичный кешированный payload (например, список
	// вкладок Pronote или идентификатор семестра ScoDoc).
	ServiceData map[string]string `json:"service_data,omitempty"`
}
