package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

func TestNewsStore_UpdateAndSetRead(t *testing.T) {
	store := NewNewsStore(newKVFake(), newNoopLogger())

	store.UpdateNews("acc-1", []models.Information{
		{ID: "n1", Title: "Sortie scolaire"},
		{ID: "n2", Title: "Menu de la semaine"},
	})

	assert.True(t, store.SetRead("acc-1", "n1", true))
	assert.False(t, store.SetRead("acc-1", "no-such", true))

	news := store.News("acc-1")
	assert.Len(t, news, 2)
	assert.True(t, news[0].Read)
	assert.False(t, news[1].Read)
}

func TestNewsStore_AccountsAreIsolated(t *testing.T) {
	kv := newKVFake()
	store := NewNewsStore(kv, newNoopLogger())

	store.UpdateNews("acc-1", []models.Information{{ID: "n1"}})
	store.UpdateNews("acc-2", []models.Information{{ID: "n2"}})

	assert.Equal(t, "n1", store.News("acc-1")[0].ID)
	assert.Equal(t, "n2", store.News("acc-2")[0].ID)
	assert.False(t, store.SetRead("acc-2", "n1", true))

	// Новый экземпляр поднимает каждый аккаунт из персистентности отдельно.
	fresh := NewNewsStore(kv, newNoopLogger())
	assert.Equal(t, "n1", fresh.News("acc-1")[0].ID)
	assert.Equal(t, "n2", fresh.News("acc-2")[0].ID)
}

func TestAttendanceStore_UpdatePerPeriod(t *testing.T) {
	store := NewAttendanceStore(newKVFake(), newNoopLogger())

	store.UpdateAttendance("acc-1", "Trimestre 1", models.Attendance{
		Delays: []models.Delay{{ID: "d1", Duration: 10}},
	})
	store.UpdateAttendance("acc-1", "Trimestre 2", models.Attendance{
		Absences: []models.Absence{{ID: "a1"}},
	})

	att, ok := store.Attendance("acc-1", "Trimestre 1")
	assert.True(t, ok)
	assert.Len(t, att.Delays, 1)
	assert.Empty(t, att.Absences)

	_, ok = store.Attendance("acc-1", "Trimestre 3")
	assert.False(t, ok)

	_, ok = store.Attendance("acc-2", "Trimestre 1")
	assert.False(t, ok)
}
