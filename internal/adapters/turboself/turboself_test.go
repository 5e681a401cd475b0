package turboself

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
		LocalID: "acc-ts",
		Service: models.ServiceTurboself,
		Auth: models.Authentication{
			Username: "host-42",
			Token:    "session-token",
		},
	}
}

func TestMenuPicksRequestedDayFromWeek(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date": "2025-09-08", "lunch": {"dishes": [{"name": "Poulet rôti"}]}},
			{"date": "2025-09-09", "lunch": {"starters": [{"name": "Carottes râpées"}], "dishes": [{"name": "Lasagnes"}]}, "dinner": {"dishes": [{"name": "Soupe"}]}}
		]`))
	}))
	defer srv.Close()

	adapter := New(srv.URL)
	date := time.Date(2025, 9, 9, 12, 0, 0, 0, time.UTC)

	menu, err := adapter.Menu(context.Background(), testAccount(), date)
	require.NoError(t, err)

	require.NotNil(t, menu.Lunch)
	require.Len(t, menu.Lunch.Main, 1)
	assert.Equal(t, "Lasagnes", menu.Lunch.Main[0].Name)
	require.Len(t, menu.Lunch.Entry, 1)
	require.NotNil(t, menu.Dinner)
}

func TestMenuMissingDayStaysEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	adapter := New(srv.URL)
	date := time.Date(2025, 9, 9, 0, 0, 0, 0, time.UTC)

	menu, err := adapter.Menu(context.Background(), testAccount(), date)
	require.NoError(t, err)

	assert.Equal(t, date.UnixMilli(), menu.Date)
	assert.Nil(t, menu.Lunch)
}

func TestBalancesEstimatesRemainingMeals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"amount": 1240, "label": "Self", "mealPrice": 310},
			{"amount": -95, "label": "Cafétéria", "mealPrice": 0}
		]`))
	}))
	defer srv.Close()

	adapter := New(srv.URL)
	balances, err := adapter.Balances(context.Background(), testAccount())
	require.NoError(t, err)

	require.Len(t, balances, 2)
	assert.InDelta(t, 12.40, balances[0].Amount, 0.001)
	assert.Equal(t, 4, balances[0].RemainingMeals)
	assert.InDelta(t, -0.95, balances[1].Amount, 0.001)
	assert.Zero(t, balances[1].RemainingMeals)
}

func TestReservationHistoryConvertsCents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"date": "2025-09-05T11:45:00Z", "amount": -310, "label": "Repas self"}]`))
	}))
	defer srv.Close()

	adapter := New(srv.URL)
	history, err := adapter.ReservationHistory(context.Background(), testAccount())
	require.NoError(t, err)

	require.Len(t, history, 1)
	assert.InDelta(t, -3.10, history[0].Amount, 0.001)
	assert.Equal(t, "€", history[0].Currency)
	assert.Equal(t, time.Date(2025, 9, 5, 11, 45, 0, 0, time.UTC).UnixMilli(), history[0].Timestamp)
}
