package multiservice

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
	"github.com/magabrotheeeer/school-aggregator/internal/stores"
)

type accountsFake struct {
	byID map[string]models.Account
}

func (f *accountsFake) AccountByLocalID(localID string) (models.Account, bool) {
	account, ok := f.byID[localID]
	return account, ok
}

type kvFake struct{}

func (f *kvFake) Get(string, any) (bool, error)        { return false, nil }
func (f *kvFake) Set(string, any, time.Duration) error { return nil }
func (f *kvFake) Invalidate(string) error              { return nil }

func newRouter(t *testing.T, accounts map[string]models.Account) (*Router, *stores.MultiServiceStore) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	spaceStore := stores.NewMultiServiceStore(&kvFake{}, log)
	return New(spaceStore, &accountsFake{byID: accounts}, log), spaceStore
}

func TestGetFeatureAccountResolvesMapping(t *testing.T) {
	pronoteAccount := models.Account{LocalID: "acc-1", Service: models.ServicePronote}
	router, spaceStore := newRouter(t, map[string]models.Account{"acc-1": pronoteAccount})

	require.NoError(t, spaceStore.Create(models.MultiServiceSpace{AccountLocalID: "space-1", Name: "Lycée"}))
	require.NoError(t, router.SetFeatureAccount("space-1", models.FeatureNews, "acc-1"))

	account, ok := router.GetFeatureAccount(models.FeatureNews, "space-1")
	require.True(t, ok)
	assert.Equal(t, "acc-1", account.LocalID)
	assert.True(t, router.HasFeatureAccountSetup(models.FeatureNews, "space-1"))
}

func TestGetFeatureAccountMissingMapping(t *testing.T) {
	router, spaceStore := newRouter(t, nil)
	require.NoError(t, spaceStore.Create(models.MultiServiceSpace{AccountLocalID: "space-1"}))

	_, ok := router.GetFeatureAccount(models.FeatureGrades, "space-1")
	assert.False(t, ok)
	assert.False(t, router.HasFeatureAccountSetup(models.FeatureGrades, "space-1"))
}

func TestGetFeatureAccountVanishedAccount(t *testing.T) {
	router, spaceStore := newRouter(t, map[string]models.Account{
		"acc-1": {LocalID: "acc-1", Service: models.ServicePronote},
	})
	require.NoError(t, spaceStore.Create(models.MultiServiceSpace{AccountLocalID: "space-1"}))
	require.NoError(t, router.SetFeatureAccount("space-1", models.FeatureNews, "acc-1"))

	// Аккаунт удалён после привязки.
	router.accounts = &accountsFake{byID: nil}

	_, ok := router.GetFeatureAccount(models.FeatureNews, "space-1")
	assert.False(t, ok)
}

func TestSetFeatureAccountRejectsComposite(t *testing.T) {
	router, spaceStore := newRouter(t, map[string]models.Account{
		"space-2": {LocalID: "space-2", Service: models.ServiceMultiSpace},
	})
	require.NoError(t, spaceStore.Create(models.MultiServiceSpace{AccountLocalID: "space-1"}))

	err := router.SetFeatureAccount("space-1", models.FeatureNews, "space-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "composite")
}

func TestSetFeatureAccountLastWriteWins(t *testing.T) {
	router, spaceStore := newRouter(t, map[string]models.Account{
		"acc-1": {LocalID: "acc-1", Service: models.ServicePronote},
		"acc-2": {LocalID: "acc-2", Service: models.ServiceSkolengo},
	})
	require.NoError(t, spaceStore.Create(models.MultiServiceSpace{AccountLocalID: "space-1"}))

	require.NoError(t, router.SetFeatureAccount("space-1", models.FeatureNews, "acc-1"))
	require.NoError(t, router.SetFeatureAccount("space-1", models.FeatureNews, "acc-2"))

	account, ok := router.GetFeatureAccount(models.FeatureNews, "space-1")
	require.True(t, ok)
	assert.Equal(t, "acc-2", account.LocalID)
}
