package stores

import (
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/cache"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

const newsDomain = "news"

type newsState struct {
	Items       []models.Information `json:"items"`
	LastUpdated int64                `json:"last_updated"`
}

// NewsStore хранит последнюю выборку новостей по каждому аккаунту.
// Все операции принимают LocalID владельца: вид другого аккаунта
// недостижим ни для чтения, ни для записи.
type NewsStore struct {
	mu    sync.Mutex
	views map[string]*newsState
	kv    KV
	log   *slog.Logger
}

// NewNewsStore создает хранилище новостей поверх kv-персистентности.
func NewNewsStore(kv KV, log *slog.Logger) *NewsStore {
	return &NewsStore{
		views: make(map[string]*newsState),
		kv:    kv,
		log:   log,
	}
}

// viewLocked возвращает вид аккаунта, при первом обращении поднимая его
// из персистентности. Вызывается под s.mu.
func (s *NewsStore) viewLocked(localID, op string) *newsState {
	if view, ok := s.views[localID]; ok {
		return view
	}
	view := &newsState{}
	if localID != "" {
		if _, err := s.kv.Get(cache.Key(localID, newsDomain), view); err != nil {
			s.log.Warn("failed to hydrate news store", sl.Op(op), sl.Err(err))
		}
	}
	s.views[localID] = view
	return view
}

// UpdateNews заменяет список новостей аккаунта целиком.
func (s *NewsStore) UpdateNews(localID string, items []models.Information) {
	const op = "stores.NewsStore.UpdateNews"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	view.Items = items
	view.LastUpdated = time.Now().UnixMilli()
	s.flushLocked(localID, op)
}

// SetRead помечает новость прочитанной или непрочитанной.
// Возвращает false, если новости с таким ID в кеше аккаунта нет.
func (s *NewsStore) SetRead(localID, informationID string, read bool) bool {
	const op = "stores.NewsStore.SetRead"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	for i := range view.Items {
		if view.Items[i].ID == informationID {
			view.Items[i].Read = read
			s.flushLocked(localID, op)
			return true
		}
	}
	return false
}

// News возвращает кешированные новости аккаунта.
func (s *NewsStore) News(localID string) []models.Information {
	const op = "stores.NewsStore.News"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	out := make([]models.Information, len(view.Items))
	copy(out, view.Items)
	return out
}

// LastUpdated возвращает время последнего обновления аккаунта, epoch-миллисекунды.
func (s *NewsStore) LastUpdated(localID string) int64 {
	const op = "stores.NewsStore.LastUpdated"

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(localID, op).LastUpdated
}

func (s *NewsStore) flushLocked(localID, op string) {
	if localID == "" {
		return
	}
	if err := s.kv.Set(cache.Key(localID, newsDomain), s.views[localID], 0); err != nil {
		s.log.Warn("failed to flush news store", sl.Op(op), sl.Err(err))
	}
}
