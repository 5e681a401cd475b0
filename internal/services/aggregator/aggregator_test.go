package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/school-aggregator/internal/cache"
	"github.com/magabrotheeeer/school-aggregator/internal/dispatcher"
	"github.com/magabrotheeeer/school-aggregator/internal/events"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
	"github.com/magabrotheeeer/school-aggregator/internal/stores"
)

// kvFake — персистентность в памяти для тестов сервиса.
type kvFake struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newKVFake() *kvFake {
	return &kvFake{data: make(map[string][]byte)}
}

func (f *kvFake) Get(key string, result any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (f *kvFake) Set(key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *kvFake) Invalidate(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

type accountsFake struct {
	accounts map[string]models.Account
}

func (f accountsFake) Get(_ context.Context, localID string) (models.Account, error) {
	account, ok := f.accounts[localID]
	if !ok {
		return models.Account{}, fmt.Errorf("account %s not found", localID)
	}
	return account, nil
}

// gatedNewsAdapter отдаёт новости по аккаунту; выборка аккаунта holdFor
// не завершается, пока канал hold не закрыт. Закрытие entered сигналит,
// что удержанная выборка началась.
type gatedNewsAdapter struct {
	service models.Service
	holdFor string
	hold    chan struct{}
	entered chan struct{}
	items   map[string][]models.Information
}

func (a *gatedNewsAdapter) Service() models.Service { return a.service }

func (a *gatedNewsAdapter) News(_ context.Context, account models.Account) ([]models.Information, error) {
	if account.LocalID == a.holdFor {
		close(a.entered)
		<-a.hold
	}
	return a.items[account.LocalID], nil
}

func (a *gatedNewsAdapter) SetNewsRead(context.Context, models.Account, string, bool) error {
	return nil
}

func newTestService(adapter dispatcher.Adapter, accounts AccountGetter, kv stores.KV) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	evaluations := stores.NewEvaluationsStore(kv, log)
	attendance := stores.NewAttendanceStore(kv, log)
	news := stores.NewNewsStore(kv, log)
	homeworks := stores.NewHomeworkStore(kv, log)
	d := dispatcher.New(dispatcher.NewRegistry(adapter), nil, evaluations, attendance, news, homeworks, events.Noop{}, log)
	return New(accounts, d, evaluations, attendance, news, homeworks)
}

// Два пользователя обновляют новости одновременно; медленный ответ первого
// не должен попасть ни в вид, ни в персистентность второго.
func TestRefreshNews_InterleavedAccountsStayIsolated(t *testing.T) {
	kv := newKVFake()
	adapter := &gatedNewsAdapter{
		service: models.ServicePronote,
		holdFor: "acc-a",
		hold:    make(chan struct{}),
		entered: make(chan struct{}),
		items: map[string][]models.Information{
			"acc-a": {{ID: "only-for-a", Title: "Réunion parents"}},
			"acc-b": {{ID: "only-for-b", Title: "Cantine fermée"}},
		},
	}
	accounts := accountsFake{accounts: map[string]models.Account{
		"acc-a": {LocalID: "acc-a", Service: models.ServicePronote},
		"acc-b": {LocalID: "acc-b", Service: models.ServicePronote},
	}}
	svc := newTestService(adapter, accounts, kv)

	var (
		newsA []models.Information
		errA  error
		done  = make(chan struct{})
	)
	go func() {
		defer close(done)
		newsA, errA = svc.RefreshNews(context.Background(), "acc-a")
	}()
	<-adapter.entered

	// Пока выборка первого аккаунта висит в адаптере, второй успевает
	// обновиться целиком.
	newsB, err := svc.RefreshNews(context.Background(), "acc-b")
	require.NoError(t, err)
	require.Len(t, newsB, 1)
	assert.Equal(t, "only-for-b", newsB[0].ID)

	close(adapter.hold)
	<-done
	require.NoError(t, errA)
	require.Len(t, newsA, 1)
	assert.Equal(t, "only-for-a", newsA[0].ID)

	var stateA, stateB struct {
		Items []models.Information `json:"items"`
	}
	found, err := kv.Get(cache.Key("acc-b", "news"), &stateB)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stateB.Items, 1)
	assert.Equal(t, "only-for-b", stateB.Items[0].ID)

	found, err = kv.Get(cache.Key("acc-a", "news"), &stateA)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stateA.Items, 1)
	assert.Equal(t, "only-for-a", stateA.Items[0].ID)
}

func TestRefreshNews_UnknownAccount(t *testing.T) {
	adapter := &gatedNewsAdapter{service: models.ServicePronote, hold: make(chan struct{}), entered: make(chan struct{})}
	svc := newTestService(adapter, accountsFake{accounts: map[string]models.Account{}}, newKVFake())

	_, err := svc.RefreshNews(context.Background(), "no-such")
	require.Error(t, err)
}
