package pronote

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

func testAccount(instanceURL string) models.Account {
	return models.Account{
		LocalID: "acc-1",
		Service: models.ServicePronote,
		Auth: models.Authentication{
			InstanceURL: instanceURL,
			Username:    "jdoe",
			Token:       "session-token",
		},
		ServiceData: map[string]string{"tabs": "news,evaluations,menu"},
	}
}

func TestEvaluationPeriodsMissingTab(t *testing.T) {
	adapter := New()
	account := testAccount("http://example.invalid")
	account.ServiceData = map[string]string{"tabs": "news,menu"}

	_, err := adapter.EvaluationPeriods(context.Background(), account)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluations tab is not available")
}

func TestEvaluationPeriodsUnauthenticated(t *testing.T) {
	adapter := New()
	account := testAccount("")

	_, err := adapter.EvaluationPeriods(context.Background(), account)

	var unauthErr *models.UnauthenticatedError
	require.ErrorAs(t, err, &unauthErr)
	assert.Equal(t, models.ServicePronote, unauthErr.Service)
}

func TestMenuUnpublishedDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	adapter := New()
	date := time.Date(2025, 9, 10, 14, 30, 0, 0, time.UTC)

	menu, err := adapter.Menu(context.Background(), testAccount(srv.URL), date)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC).UnixMilli(), menu.Date)
	assert.Nil(t, menu.Lunch)
	assert.Nil(t, menu.Dinner)
}

func TestMenuSelectsRequestedDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date": "2025-09-09", "lunch": {"main": [{"name": "Poisson pané"}]}},
			{"date": "2025-09-10", "lunch": {"main": [{"name": "Boeuf bourguignon"}], "dessert": [{"name": "Tarte aux pommes"}]}}
		]`))
	}))
	defer srv.Close()

	adapter := New()
	date := time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

	menu, err := adapter.Menu(context.Background(), testAccount(srv.URL), date)
	require.NoError(t, err)

	require.NotNil(t, menu.Lunch)
	require.Len(t, menu.Lunch.Main, 1)
	assert.Equal(t, "Boeuf bourguignon", menu.Lunch.Main[0].Name)
	require.Len(t, menu.Lunch.Dessert, 1)
	assert.Nil(t, menu.Dinner)
}

func TestReloadMissingCredentials(t *testing.T) {
	adapter := New()
	account := testAccount("http://example.invalid")
	account.Auth.Password = ""

	_, err := adapter.Reload(context.Background(), account)

	var unauthErr *models.UnauthenticatedError
	require.ErrorAs(t, err, &unauthErr)
}

func TestReloadKeepsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token": "fresh-token"}`))
	}))
	defer srv.Close()

	adapter := New()
	account := testAccount(srv.URL)
	account.Auth.Password = "secret"

	auth, err := adapter.Reload(context.Background(), account)
	require.NoError(t, err)

	assert.Equal(t, "fresh-token", auth.Token)
	assert.Equal(t, "jdoe", auth.Username)
	assert.Equal(t, "secret", auth.Password)
	assert.NotEqual(t, auth.Token, account.Auth.Token)
}
