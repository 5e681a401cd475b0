package stores

import (
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/cache"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

const homeworkDomain = "homeworks"

type homeworkState struct {
	// Weeks — домашние задания по номеру epoch-недели.
	Weeks       map[int][]models.Homework `json:"weeks"`
	LastUpdated int64                     `json:"last_updated"`
}

// HomeworkStore хранит домашние задания, сгруппированные по номеру недели,
// раздельно по каждому аккаунту.
type HomeworkStore struct {
	mu    sync.Mutex
	views map[string]*homeworkState
	kv    KV
	log   *slog.Logger
}

// NewHomeworkStore создает хранилище домашних заданий поверх kv-персистентности.
func NewHomeworkStore(kv KV, log *slog.Logger) *HomeworkStore {
	return &HomeworkStore{
		views: make(map[string]*homeworkState),
		kv:    kv,
		log:   log,
	}
}

// viewLocked возвращает вид аккаунта, при первом обращении поднимая его
// из персистентности. Вызывается под s.mu.
func (s *HomeworkStore) viewLocked(localID, op string) *homeworkState {
	if view, ok := s.views[localID]; ok {
		return view
	}
	view := &homeworkState{}
	if localID != "" {
		if _, err := s.kv.Get(cache.Key(localID, homeworkDomain), view); err != nil {
			s.log.Warn("failed to hydrate homework store", sl.Op(op), sl.Err(err))
		}
	}
	if view.Weeks == nil {
		view.Weeks = make(map[int][]models.Homework)
	}
	s.views[localID] = view
	return view
}

// UpdateHomeworks заменяет задания недели данными из внешнего сервиса.
// Задания, добавленные пользователем вручную (Custom), переживают перезапись.
func (s *HomeworkStore) UpdateHomeworks(localID string, epochWeek int, homeworks []models.Homework) {
	const op = "stores.HomeworkStore.UpdateHomeworks"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)

	merged := make([]models.Homework, 0, len(homeworks))
	merged = append(merged, homeworks...)
	for _, hw := range view.Weeks[epochWeek] {
		if hw.Custom {
			merged = append(merged, hw)
		}
	}
	view.Weeks[epochWeek] = merged
	view.LastUpdated = time.Now().UnixMilli()
	s.flushLocked(localID, op)
}

// AddHomework добавляет одно задание в неделю.
func (s *HomeworkStore) AddHomework(localID string, epochWeek int, homework models.Homework) {
	const op = "stores.HomeworkStore.AddHomework"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	view.Weeks[epochWeek] = append(view.Weeks[epochWeek], homework)
	view.LastUpdated = time.Now().UnixMilli()
	s.flushLocked(localID, op)
}

// UpdateHomework заменяет задание с совпадающим ID. Возвращает false,
// если задания с таким ID в неделе нет.
func (s *HomeworkStore) UpdateHomework(localID string, epochWeek int, homework models.Homework) bool {
	const op = "stores.HomeworkStore.UpdateHomework"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	for i, hw := range view.Weeks[epochWeek] {
		if hw.ID == homework.ID {
			view.Weeks[epochWeek][i] = homework
			view.LastUpdated = time.Now().UnixMilli()
			s.flushLocked(localID, op)
			return true
		}
	}
	return false
}

// RemoveHomework удаляет задание по ID. Возвращает false, если задания нет.
func (s *HomeworkStore) RemoveHomework(localID string, epochWeek int, homeworkID string) bool {
	const op = "stores.HomeworkStore.RemoveHomework"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	list := view.Weeks[epochWeek]
	for i, hw := range list {
		if hw.ID == homeworkID {
			view.Weeks[epochWeek] = append(list[:i:i], list[i+1:]...)
			view.LastUpdated = time.Now().UnixMilli()
			s.flushLocked(localID, op)
			return true
		}
	}
	return false
}

// Homeworks возвращает задания недели.
func (s *HomeworkStore) Homeworks(localID string, epochWeek int) []models.Homework {
	const op = "stores.HomeworkStore.Homeworks"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	out := make([]models.Homework, len(view.Weeks[epochWeek]))
	copy(out, view.Weeks[epochWeek])
	return out
}

// LastUpdated возвращает время последнего обновления аккаунта, epoch-миллисекунды.
func (s *HomeworkStore) LastUpdated(localID string) int64 {
	const op = "stores.HomeworkStore.LastUpdated"

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(localID, op).LastUpdated
}

func (s *HomeworkStore) flushLocked(localID, op string) {
	if localID == "" {
		return
	}
	if err := s.kv.Set(cache.Key(localID, homeworkDomain), s.views[localID], 0); err != nil {
		s.log.Warn("failed to flush homework store", sl.Op(op), sl.Err(err))
	}
}
