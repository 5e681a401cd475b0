package stores

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/cache"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

const evaluationsDomain = "evaluations"

// evaluationsState — сериализуемое состояние оценок одного аккаунта.
type evaluationsState struct {
	Periods       []models.Period                `json:"periods"`
	DefaultPeriod string                         `json:"default_period"`
	Evaluations   map[string][]models.Evaluation `json:"evaluations"`
	LastUpdated   int64                          `json:"last_updated"`
}

// EvaluationsStore хранит периоды, период по умолчанию и оценки по периодам,
// раздельно по каждому аккаунту. Все операции принимают LocalID владельца.
// Инвариант: DefaultPeriod всегда указывает на имя из Periods.
type EvaluationsStore struct {
	mu    sync.Mutex
	views map[string]*evaluationsState
	kv    KV
	log   *slog.Logger
}

// NewEvaluationsStore создает хранилище оценок поверх kv-персистентности.
func NewEvaluationsStore(kv KV, log *slog.Logger) *EvaluationsStore {
	return &EvaluationsStore{
		views: make(map[string]*evaluationsState),
		kv:    kv,
		log:   log,
	}
}

// viewLocked возвращает вид аккаунта, при первом обращении поднимая его
// из персистентности. Вызывается под s.mu.
func (s *EvaluationsStore) viewLocked(localID, op string) *evaluationsState {
	if view, ok := s.views[localID]; ok {
		return view
	}
	view := &evaluationsState{}
	if localID != "" {
		if _, err := s.kv.Get(cache.Key(localID, evaluationsDomain), view); err != nil {
			s.log.Warn("failed to hydrate evaluations store", sl.Op(op), sl.Err(err))
		}
	}
	if view.Evaluations == nil {
		view.Evaluations = make(map[string][]models.Evaluation)
	}
	s.views[localID] = view
	return view
}

// UpdatePeriods атомарно заменяет список периодов и период по умолчанию.
// Возвращает ошибку, если defaultPeriod не входит в periods.
func (s *EvaluationsStore) UpdatePeriods(localID string, periods []models.Period, defaultPeriod string) error {
	const op = "stores.EvaluationsStore.UpdatePeriods"

	known := false
	for _, p := range periods {
		if p.Name == defaultPeriod {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%s: default period %q is not in the period list", op, defaultPeriod)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	view.Periods = periods
	view.DefaultPeriod = defaultPeriod
	view.LastUpdated = time.Now().UnixMilli()
	s.flushLocked(localID, op)
	return nil
}

// UpdateEvaluations заменяет срез оценок только одного периода, не трогая
// кешированные данные остальных периодов.
func (s *EvaluationsStore) UpdateEvaluations(localID, periodName string, evaluations []models.Evaluation) {
	const op = "stores.EvaluationsStore.UpdateEvaluations"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	view.Evaluations[periodName] = evaluations
	view.LastUpdated = time.Now().UnixMilli()
	s.flushLocked(localID, op)
}

// Periods возвращает периоды аккаунта и имя периода по умолчанию одним снимком.
func (s *EvaluationsStore) Periods(localID string) ([]models.Period, string) {
	const op = "stores.EvaluationsStore.Periods"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	out := make([]models.Period, len(view.Periods))
	copy(out, view.Periods)
	return out, view.DefaultPeriod
}

// Evaluations возвращает кешированные оценки периода.
func (s *EvaluationsStore) Evaluations(localID, periodName string) []models.Evaluation {
	const op = "stores.EvaluationsStore.Evaluations"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	out := make([]models.Evaluation, len(view.Evaluations[periodName]))
	copy(out, view.Evaluations[periodName])
	return out
}

// LastUpdated возвращает время последнего успешного обновления аккаунта,
// epoch-миллисекунды.
func (s *EvaluationsStore) LastUpdated(localID string) int64 {
	const op = "stores.EvaluationsStore.LastUpdated"

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(localID, op).LastUpdated
}

func (s *EvaluationsStore) flushLocked(localID, op string) {
	if localID == "" {
		return
	}
	if err := s.kv.Set(cache.Key(localID, evaluationsDomain), s.views[localID], 0); err != nil {
		s.log.Warn("failed to flush evaluations store", sl.Op(op), sl.Err(err))
	}
}
