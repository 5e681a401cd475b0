package stores

import (
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/cache"
	"github.com/magabrotheeeer/school-aggregator/internal/lib/sl"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

const attendanceDomain = "attendance"

type attendanceState struct {
	Periods     map[string]models.Attendance `json:"periods"`
	LastUpdated int64                        `json:"last_updated"`
}

// AttendanceStore хранит события посещаемости по имени периода,
// раздельно по каждому аккаунту.
type AttendanceStore struct {
	mu    sync.Mutex
	views map[string]*attendanceState
	kv    KV
	log   *slog.Logger
}

// NewAttendanceStore создает хранилище посещаемости поверх kv-персистентности.
func NewAttendanceStore(kv KV, log *slog.Logger) *AttendanceStore {
	return &AttendanceStore{
		views: make(map[string]*attendanceState),
		kv:    kv,
		log:   log,
	}
}

// viewLocked возвращает вид аккаунта, при первом обращении поднимая его
// из персистентности. Вызывается под s.mu.
func (s *AttendanceStore) viewLocked(localID, op string) *attendanceState {
	if view, ok := s.views[localID]; ok {
		return view
	}
	view := &attendanceState{}
	if localID != "" {
		if _, err := s.kv.Get(cache.Key(localID, attendanceDomain), view); err != nil {
			s.log.Warn("failed to hydrate attendance store", sl.Op(op), sl.Err(err))
		}
	}
	if view.Periods == nil {
		view.Periods = make(map[string]models.Attendance)
	}
	s.views[localID] = view
	return view
}

// UpdateAttendance заменяет данные посещаемости одного периода.
func (s *AttendanceStore) UpdateAttendance(localID, periodName string, attendance models.Attendance) {
	const op = "stores.AttendanceStore.UpdateAttendance"

	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked(localID, op)
	view.Periods[periodName] = attendance
	view.LastUpdated = time.Now().UnixMilli()
	s.flushLocked(localID, op)
}

// Attendance возвращает кешированную посещаемость периода.
func (s *AttendanceStore) Attendance(localID, periodName string) (models.Attendance, bool) {
	const op = "stores.AttendanceStore.Attendance"

	s.mu.Lock()
	defer s.mu.Unlock()
	att, ok := s.viewLocked(localID, op).Periods[periodName]
	return att, ok
}

// LastUpdated возвращает время последнего обновления аккаунта, epoch-миллисекунды.
func (s *AttendanceStore) LastUpdated(localID string) int64 {
	const op = "stores.AttendanceStore.LastUpdated"

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(localID, op).LastUpdated
}

func (s *AttendanceStore) flushLocked(localID, op string) {
	if localID == "" {
		return
	}
	if err := s.kv.Set(cache.Key(localID, attendanceDomain), s.views[localID], 0); err != nil {
		s.log.Warn("failed to flush attendance store", sl.Op(op), sl.Err(err))
	}
}
