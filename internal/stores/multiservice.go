package stores

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// multiServiceKey — глобальный ключ персистентности: настройки составных
// аккаунтов не зависят от того, какой аккаунт сейчас активен.
const multiServiceKey = "multiservice:spaces"

// MultiServiceStore хранит составные аккаунты и их привязки фич к аккаунтам.
type MultiServiceStore struct {
	mu     sync.RWMutex
	spaces map[string]models.MultiServiceSpace // по AccountLocalID
	kv     KV
	log    *slog.Logger
}

// NewMultiServiceStore создает хранилище составных аккаунтов и поднимает
// сохранённые настройки из персистентности.
func NewMultiServiceStore(kv KV, log *slog.Logger) *MultiServiceStore {
	const op = "stores.NewMultiServiceStore"

	s := &MultiServiceStore{
		spaces: make(map[string]models.MultiServiceSpace),
		kv:     kv,
		log:    log,
	}
	found, err := kv.Get(multiServiceKey, &s.spaces)
	if err != nil {
		log.Warn("failed to hydrate multi-service store", sl.Op(op), sl.Err(err))
	}
	if !found || s.spaces == nil {
		s.spaces = make(map[string]models.MultiServiceSpace)
	}
	return s
}

// Create регистрирует новый составной аккаунт.
func (s *MultiServiceStore) Create(space models.MultiServiceSpace) error {
	const op = "stores.MultiServiceStore.Create"

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.spaces[space.AccountLocalID]; exists {
		return fmt.Errorf("%s: space for account %s already exists", op, space.AccountLocalID)
	}
	if space.FeaturesServices == nil {
		space.FeaturesServices = make(map[models.Feature]string)
	}
	s.spaces[space.AccountLocalID] = space
	s.flushLocked(op)
	return nil
}

// Remove удаляет составной аккаунт вместе с его привязками.
func (s *MultiServiceStore) Remove(accountLocalID string) {
	const op = "stores.MultiServiceStore.Remove"

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.spaces, accountLocalID)
	s.flushLocked(op)
}

// Update заменяет имя и изображение составного аккаунта, не трогая привязки.
func (s *MultiServiceStore) Update(accountLocalID, name, image string) bool {
	const op = "stores.MultiServiceStore.Update"

	s.mu.Lock()
	defer s.mu.Unlock()
	space, ok := s.spaces[accountLocalID]
	if !ok {
		return false
	}
	space.Name = name
	space.Image = image
	s.spaces[accountLocalID] = space
	s.flushLocked(op)
	return true
}

// ToggleEnabledState переключает включённость составного аккаунта.
func (s *MultiServiceStore) ToggleEnabledState(accountLocalID string) bool {
	const op = "stores.MultiServiceStore.ToggleEnabledState"

	s.mu.Lock()
	defer s.mu.Unlock()
	space, ok := s.spaces[accountLocalID]
	if !ok {
		return false
	}
	space.Enabled = !space.Enabled
	s.spaces[accountLocalID] = space
	s.flushLocked(op)
	return true
}

// SetFeatureAccount привязывает фичу к аккаунту. Повторная привязка той же
// фичи перезаписывает предыдущую (last-write-wins), слияния нет.
func (s *MultiServiceStore) SetFeatureAccount(spaceLocalID string, feature models.Feature, accountLocalID string) bool {
	const op = "stores.MultiServiceStore.SetFeatureAccount"

	s.mu.Lock()
	defer s.mu.Unlock()
	space, ok := s.spaces[spaceLocalID]
	if !ok {
		return false
	}
	if space.FeaturesServices == nil {
		space.FeaturesServices = make(map[models.Feature]string)
	}
	space.FeaturesServices[feature] = accountLocalID
	s.spaces[spaceLocalID] = space
	s.flushLocked(op)
	return true
}

// GetFeatureAccountID возвращает LocalID аккаунта, привязанного к фиче.
// Второй результат false — привязки нет.
func (s *MultiServiceStore) GetFeatureAccountID(spaceLocalID string, feature models.Feature) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	space, ok := s.spaces[spaceLocalID]
	if !ok {
		return "", false
	}
	id, ok := space.FeaturesServices[feature]
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Space возвращает составной аккаунт по LocalID.
func (s *MultiServiceStore) Space(accountLocalID string) (models.MultiServiceSpace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	space, ok := s.spaces[accountLocalID]
	return space, ok
}

func (s *MultiServiceStore) flushLocked(op string) {
	if err := s.kv.Set(multiServiceKey, s.spaces, 0); err != nil {
		s.log.Warn("failed to flush multi-service store", sl.Op(op), sl.Err(err))
	}
}
