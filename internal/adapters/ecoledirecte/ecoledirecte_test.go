package ecoledirecte

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

func testAccount() models.Account {
	return models.Account{
		LocalID: "acc-ed",
		Service: models.ServiceEcoleDirecte,
		Auth: models.Authentication{
			Username: "jdoe",
			Token:    "session-token",
		},
	}
}

func TestAttendanceSplitsFeedByKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/eleves/jdoe/viescolaire", r.URL.Path)
		require.Equal(t, "session-token", r.Header.Get("X-Token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"absencesRetards": [
				{"id": "d1", "typeElement": "Retard", "displayDate": "le 12 septembre 2025 de 08:00 à 08:15", "justifie": true, "motif": "Transport"},
				{"id": "a1", "typeElement": "Absence", "displayDate": "du vendredi 2 octobre 2025 à 08:00 au vendredi 3 octobre 2025 à 17:00", "libelle": "14h00", "regularise": true}
			],
			"sanctionsEncouragements": [
				{"id": "p1", "typeElement": "Punition", "displayDate": "le 5 novembre 2025 de 10:00 à 12:00", "par": "M. Martin", "nature": "Retenue", "motif": "Bavardage"},
				{"id": "e1", "typeElement": "Encouragement", "displayDate": "le 5 novembre 2025"}
			]
		}`))
	}))
	defer srv.Close()

	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	adapter := New(srv.URL)
	att, err := adapter.Attendance(context.Background(), testAccount(), "")
	require.NoError(t, err)

	require.Len(t, att.Delays, 1)
	assert.Equal(t, "d1", att.Delays[0].ID)
	assert.Equal(t, time.Date(2025, 9, 12, 8, 0, 0, 0, loc).UnixMilli(), att.Delays[0].Timestamp)
	assert.Equal(t, 15, att.Delays[0].Duration)
	assert.True(t, att.Delays[0].Justified)
	assert.Equal(t, []string{"Transport"}, att.Delays[0].Reasons)

	require.Len(t, att.Absences, 1)
	assert.Equal(t, time.Date(2025, 10, 2, 8, 0, 0, 0, loc).UnixMilli(), att.Absences[0].FromTimestamp)
	assert.Equal(t, time.Date(2025, 10, 3, 17, 0, 0, 0, loc).UnixMilli(), att.Absences[0].ToTimestamp)
	assert.Equal(t, "14h00", att.Absences[0].Hours)
	assert.True(t, att.Absences[0].AdministrativelyFixed)

	require.Len(t, att.Punishments, 1)
	assert.Equal(t, 120, att.Punishments[0].Duration)
	assert.Equal(t, "M. Martin", att.Punishments[0].GivenBy)
	assert.Equal(t, "Bavardage", att.Punishments[0].Reason.Text)

	// Неизвестный вид события пропускается без ошибки.
	assert.Empty(t, att.Observations)
}

func TestAttendanceUnauthenticated(t *testing.T) {
	adapter := New("http://example.invalid")
	account := testAccount()
	account.Auth.Token = ""

	_, err := adapter.Attendance(context.Background(), account, "")

	var unauthErr *models.UnauthenticatedError
	require.ErrorAs(t, err, &unauthErr)
	assert.Equal(t, models.ServiceEcoleDirecte, unauthErr.Service)
}

func TestReloadReturnsFreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token": "fresh"}`))
	}))
	defer srv.Close()

	adapter := New(srv.URL)
	account := testAccount()
	account.Auth.Password = "secret"

	auth, err := adapter.Reload(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, "fresh", auth.Token)
	assert.Equal(t, "secret", auth.Password)
}
