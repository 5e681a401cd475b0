// Package periods содержит чистую логику выбора периода по умолчанию
// для любых данных, привязанных к школьным периодам.
package periods

import (
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// EpochWeek возвращает номер недели от эпохи Unix. Используется как ключ
// группировки домашних заданий в кеше.
func EpochWeek(t time.Time) int {
	return int(t.Unix() / (7 * 24 * 60 * 60))
}

// Select возвращает первый период, интервал которого содержит now; если такого
// нет — первый период списка в исходном порядке. Для пустого списка возвращает
// пустой период и false. Результат детерминирован и зависит только от списка.
func Select(list []models.Period, now time.Time) (models.Period, bool) {
	if len(list) == 0 {
		return models.Period{}, false
	}
	ts := now.UnixMilli()
	for _, p := range list {
		if p.Contains(ts) {
			return p, true
		}
	}
	return list[0], true
}
