package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/school-aggregator/internal/events"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
	"github.com/magabrotheeeer/school-aggregator/internal/stores"
)

type kvFake struct{}

func (kvFake) Get(string, any) (bool, error)        { return false, nil }
func (kvFake) Set(string, any, time.Duration) error { return nil }
func (kvFake) Invalidate(string) error              { return nil }

// fakeAdapter реализует только те возможности, которые ему включили.
type fakeAdapter struct {
	service models.Service

	newsCalls   int
	news        []models.Information
	newsErr     error
	menuCalls   int
	lastPeriod  string
	periods     []models.Period
	evaluations []models.Evaluation
}

func (f *fakeAdapter) Service() models.Service { return f.service }

func (f *fakeAdapter) News(context.Context, models.Account) ([]models.Information, error) {
	f.newsCalls++
	return f.news, f.newsErr
}

func (f *fakeAdapter) SetNewsRead(context.Context, models.Account, string, bool) error {
	return f.newsErr
}

func (f *fakeAdapter) Menu(_ context.Context, _ models.Account, date time.Time) (models.Menu, error) {
	f.menuCalls++
	return models.Menu{Date: date.UTC().Truncate(24 * time.Hour).UnixMilli(), Lunch: &models.Meal{}}, nil
}

func (f *fakeAdapter) EvaluationPeriods(context.Context, models.Account) ([]models.Period, error) {
	return f.periods, nil
}

func (f *fakeAdapter) Evaluations(_ context.Context, _ models.Account, periodName string) ([]models.Evaluation, error) {
	f.lastPeriod = periodName
	return f.evaluations, nil
}

// menuOnlyAdapter не умеет ничего, кроме меню.
type menuOnlyAdapter struct {
	service models.Service
}

func (m *menuOnlyAdapter) Service() models.Service { return m.service }

func (m *menuOnlyAdapter) Menu(_ context.Context, _ models.Account, date time.Time) (models.Menu, error) {
	return models.Menu{Date: date.UTC().Truncate(24 * time.Hour).UnixMilli()}, nil
}

type routerFake struct {
	target models.Account
	found  bool
}

func (r *routerFake) GetFeatureAccount(models.Feature, string) (models.Account, bool) {
	return r.target, r.found
}

type testEnv struct {
	dispatcher  *Dispatcher
	evaluations *stores.EvaluationsStore
	news        *stores.NewsStore
}

func newTestEnv(t *testing.T, router FeatureRouter, adapters ...Adapter) testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	evaluations := stores.NewEvaluationsStore(kvFake{}, log)
	attendance := stores.NewAttendanceStore(kvFake{}, log)
	news := stores.NewNewsStore(kvFake{}, log)
	homeworks := stores.NewHomeworkStore(kvFake{}, log)
	d := New(NewRegistry(adapters...), router, evaluations, attendance, news, homeworks, events.Noop{}, log)
	return testEnv{dispatcher: d, evaluations: evaluations, news: news}
}

func TestGetMenuRoutesToMatchingAdapter(t *testing.T) {
	pronoteFake := &fakeAdapter{service: models.ServicePronote}
	turboselfFake := &fakeAdapter{service: models.ServiceTurboself}
	env := newTestEnv(t, &routerFake{}, pronoteFake, turboselfFake)

	account := models.Account{LocalID: "acc-1", Service: models.ServiceTurboself}
	_, err := env.dispatcher.GetMenu(context.Background(), account, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 1, turboselfFake.menuCalls)
	assert.Zero(t, pronoteFake.menuCalls)
}

func TestGetMenuPassiveAccountIsEmpty(t *testing.T) {
	env := newTestEnv(t, &routerFake{})
	date := time.Date(2025, 9, 10, 15, 0, 0, 0, time.UTC)

	menu, err := env.dispatcher.GetMenu(context.Background(), models.Account{Service: models.ServiceLocal}, date)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC).UnixMilli(), menu.Date)
	assert.Nil(t, menu.Lunch)
}

func TestUpdateNewsMissingCapability(t *testing.T) {
	env := newTestEnv(t, &routerFake{}, &menuOnlyAdapter{service: models.ServiceTurboself})
	account := models.Account{LocalID: "acc-1", Service: models.ServiceTurboself}

	err := env.dispatcher.UpdateNewsInCache(context.Background(), account)

	var notImpl *models.NotImplementedError
	require.ErrorAs(t, err, &notImpl)
	assert.Equal(t, models.ServiceTurboself, notImpl.Service)
}

func TestUpdateNewsUnregisteredService(t *testing.T) {
	env := newTestEnv(t, &routerFake{})
	account := models.Account{LocalID: "acc-1", Service: models.ServicePronote}

	err := env.dispatcher.UpdateNewsInCache(context.Background(), account)

	var notImpl *models.NotImplementedError
	require.ErrorAs(t, err, &notImpl)
}

func TestUpdateNewsWritesThroughOnSuccess(t *testing.T) {
	adapter := &fakeAdapter{
		service: models.ServicePronote,
		news:    []models.Information{{ID: "n1", Title: "Rentrée"}},
	}
	env := newTestEnv(t, &routerFake{}, adapter)
	account := models.Account{LocalID: "acc-1", Service: models.ServicePronote}

	require.NoError(t, env.dispatcher.UpdateNewsInCache(context.Background(), account))

	cached := env.news.News("acc-1")
	require.Len(t, cached, 1)
	assert.Equal(t, "n1", cached[0].ID)
	assert.NotZero(t, env.news.LastUpdated("acc-1"))
}

func TestUpdateNewsFailureLeavesCacheUntouched(t *testing.T) {
	adapter := &fakeAdapter{service: models.ServicePronote, news: []models.Information{{ID: "n1"}}}
	env := newTestEnv(t, &routerFake{}, adapter)
	account := models.Account{LocalID: "acc-1", Service: models.ServicePronote}
	require.NoError(t, env.dispatcher.UpdateNewsInCache(context.Background(), account))

	adapter.news = []models.Information{{ID: "n2"}}
	adapter.newsErr = errors.New("upstream is down")
	err := env.dispatcher.UpdateNewsInCache(context.Background(), account)
	require.Error(t, err)

	cached := env.news.News("acc-1")
	require.Len(t, cached, 1)
	assert.Equal(t, "n1", cached[0].ID)
}

func TestUpdateNewsMultiSpaceWithoutMapping(t *testing.T) {
	env := newTestEnv(t, &routerFake{found: false}, &fakeAdapter{service: models.ServicePronote})
	space := models.Account{LocalID: "space-1", Service: models.ServiceMultiSpace}

	err := env.dispatcher.UpdateNewsInCache(context.Background(), space)

	var notConfigured *models.FeatureNotConfiguredError
	require.ErrorAs(t, err, &notConfigured)
	assert.Equal(t, models.FeatureNews, notConfigured.Feature)
	assert.Empty(t, env.news.News("space-1"))
}

func TestUpdateNewsMultiSpaceResolvesOnce(t *testing.T) {
	adapter := &fakeAdapter{
		service: models.ServicePronote,
		news:    []models.Information{{ID: "n1"}},
	}
	target := models.Account{LocalID: "acc-1", Service: models.ServicePronote}
	env := newTestEnv(t, &routerFake{target: target, found: true}, adapter)
	space := models.Account{LocalID: "space-1", Service: models.ServiceMultiSpace}

	require.NoError(t, env.dispatcher.UpdateNewsInCache(context.Background(), space))

	assert.Equal(t, 1, adapter.newsCalls)

	// Данные кешируются под составным аккаунтом, а не под целевым.
	assert.Len(t, env.news.News("space-1"), 1)
	assert.Empty(t, env.news.News("acc-1"))
}

func TestUpdateEvaluationPeriodsSelectsCurrent(t *testing.T) {
	now := time.Now().UnixMilli()
	adapter := &fakeAdapter{
		service: models.ServicePronote,
		periods: []models.Period{
			{Name: "Trimestre 1", StartTimestamp: now - 3_000_000, EndTimestamp: now - 2_000_000},
			{Name: "Trimestre 2", StartTimestamp: now - 1_000_000, EndTimestamp: now + 1_000_000},
		},
	}
	env := newTestEnv(t, &routerFake{}, adapter)
	account := models.Account{LocalID: "acc-1", Service: models.ServicePronote}

	require.NoError(t, env.dispatcher.UpdateEvaluationPeriodsInCache(context.Background(), account))

	list, def := env.evaluations.Periods("acc-1")
	require.Len(t, list, 2)
	assert.Equal(t, "Trimestre 2", def)
}

func TestUpdateEvaluationsMultiSpaceReusesPeriodName(t *testing.T) {
	adapter := &fakeAdapter{service: models.ServicePronote}
	target := models.Account{LocalID: "acc-1", Service: models.ServicePronote}
	env := newTestEnv(t, &routerFake{target: target, found: true}, adapter)
	space := models.Account{LocalID: "space-1", Service: models.ServiceMultiSpace}

	require.NoError(t, env.dispatcher.UpdateEvaluationsInCache(context.Background(), space, "Trimestre 2"))

	assert.Equal(t, "Trimestre 2", adapter.lastPeriod)
}

func TestReloadPassiveAccountKeepsAuth(t *testing.T) {
	env := newTestEnv(t, &routerFake{})
	account := models.Account{
		LocalID: "acc-1",
		Service: models.ServiceLocal,
		Auth:    models.Authentication{Username: "local"},
	}

	auth, err := env.dispatcher.Reload(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, account.Auth, auth)
}
