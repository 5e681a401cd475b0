package models

// Feature — один домен данных, который внутри составного аккаунта может
// обслуживаться независимо привязанным основным аккаунтом.
type Feature string

// Фичи, доступные для маршрутизации в составном аккаунте.
const (
	FeatureGrades      Feature = "grades"
	FeatureTimetable   Feature = "timetable"
	FeatureHomeworks   Feature = "homeworks"
	FeatureAttendance  Feature = "attendance"
	FeatureNews        Feature = "news"
	FeatureEvaluations Feature = "evaluations"
	FeatureChats       Feature = "chats"
)

// MultiServiceSpace описывает составной аккаунт: какие фичи каким привязанным
// аккаунтам делегированы. FeaturesServices отображает фичу в LocalID основного
// аккаунта; отсутствие записи означает «фича не настроена».
type MultiServiceSpace struct {
	AccountLocalID   string             `json:"account_local_id"`
	Name             string             `json:"name"`
	Image            string             `json:"image,omitempty"`
	Enabled          bool               `json:"enabled"`
	FeaturesServices map[Feature]string `json:"features_services"`
}
