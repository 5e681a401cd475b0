package alise

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
		LocalID: "acc-alise",
		Service: models.ServiceAlise,
		Auth: models.Authentication{
			Token:      "session-token",
			CardNumber: "123456",
		},
	}
}

func TestMenuDateMismatchKeepsDateOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "2025-09-10", r.URL.Query().Get("date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"date": "2025-09-11", "dishes": ["Couscous"]}`))
	}))
	defer srv.Close()

	adapter := New(srv.URL)
	date := time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC)

	menu, err := adapter.Menu(context.Background(), testAccount(), date)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC).UnixMilli(), menu.Date)
	assert.Nil(t, menu.Lunch)
	assert.Nil(t, menu.Dinner)
}

func TestMenuMatchingDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"date": "2025-09-10", "dishes": ["Couscous", "Yaourt"]}`))
	}))
	defer srv.Close()

	adapter := New(srv.URL)
	date := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

	menu, err := adapter.Menu(context.Background(), testAccount(), date)
	require.NoError(t, err)

	require.NotNil(t, menu.Lunch)
	require.Len(t, menu.Lunch.Main, 2)
	assert.Equal(t, "Couscous", menu.Lunch.Main[0].Name)
}

func TestBalancesUnauthenticated(t *testing.T) {
	adapter := New("http://example.invalid")
	account := testAccount()
	account.Auth.CardNumber = ""

	_, err := adapter.Balances(context.Background(), account)

	var unauthErr *models.UnauthenticatedError
	require.ErrorAs(t, err, &unauthErr)
	assert.Equal(t, models.ServiceAlise, unauthErr.Service)
}
