// Package iutlannion реализует адаптер ScoDoc IUT de Lannion: семестры как
// периоды, бюллетень компетенций как оценки. Сервис университетский, поэтому
// школьных лент (новости, посещаемость) у него нет.
package iutlannion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Adapter — адаптер ScoDoc IUT de Lannion.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
}

// New создает адаптер IUT de Lannion.
func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Service возвращает тег сервиса.
func (a *Adapter) Service() models.Service {
	return models.ServiceIUTLannion
}

func checkSession(account models.Account) error {
	if account.Auth.Token == "" {
		return &models.UnauthenticatedError{Service: models.ServiceIUTLannion}
	}
	return nil
}

type semesterPayload struct {
	ID        string `json:"id"`
	Title     string `json:"titre"`
	DateDebut string `json:"date_debut"` // "2006-01-02"
	DateFin   string `json:"date_fin"`
}

type skillPayload struct {
	Code  string  `json:"code"`
	Title string  `json:"titre"`
	Level float64 `json:"niveau"` // 0..4
}

type evaluationPayload struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Module      string         `json:"module"`
	ModuleTitle string         `json:"module_titre"`
	Date        string         `json:"date"` // "2006-01-02"
	Coefficient float64        `json:"coef"`
	Skills      []skillPayload `json:"competences"`
	Teacher     string         `json:"enseignant"`
}

// EvaluationPeriods возвращает семестры ученика как периоды.
func (a *Adapter) EvaluationPeriods(ctx context.Context, account models.Account) ([]models.Period, error) {
	const op = "iutlannion.EvaluationPeriods"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var raw []semesterPayload
	path := "/etudiants/" + account.Auth.Username + "/semestres"
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	periods := make([]models.Period, 0, len(raw))
	for _, s := range raw {
		start, err := time.ParseInLocation("2006-01-02", s.DateDebut, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s: parse semester start: %w", op, err)
		}
		end, err := time.ParseInLocation("2006-01-02", s.DateFin, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s: parse semester end: %w", op, err)
		}
		periods = append(periods, models.Period{
			Name:           s.Title,
			StartTimestamp: start.UnixMilli(),
			EndTimestamp:   end.Add(24*time.Hour - time.Millisecond).UnixMilli(),
		})
	}
	return periods, nil
}

// Evaluations возвращает оценки компетенций из бюллетеня семестра.
func (a *Adapter) Evaluations(ctx context.Context, account models.Account, periodName string) ([]models.Evaluation, error) {
	const op = "iutlannion.Evaluations"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var raw []evaluationPayload
	path := "/etudiants/" + account.Auth.Username + "/bulletin?semestre=" + periodName
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Evaluation, 0, len(raw))
	for _, e := range raw {
		date, err := time.ParseInLocation("2006-01-02", e.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%s: parse evaluation date: %w", op, err)
		}
		skills := make([]models.Skill, 0, len(e.Skills))
		levels := make([]string, 0, len(e.Skills))
		for _, s := range e.Skills {
			level := levelName(s.Level)
			levels = append(levels, level)
			skills = append(skills, models.Skill{
				Coefficient: int(e.Coefficient),
				Level:       level,
				DomainName:  s.Code,
				ItemName:    s.Title,
			})
		}
		out = append(out, models.Evaluation{
			ID:          e.ID,
			Name:        e.Description,
			SubjectID:   e.Module,
			SubjectName: e.ModuleTitle,
			Timestamp:   date.UnixMilli(),
			Coefficient: int(e.Coefficient),
			Levels:      levels,
			Skills:      skills,
			Teacher:     e.Teacher,
		})
	}
	return out, nil
}

// Reload выполняет CAS-вход университета и возвращает свежий токен ScoDoc.
func (a *Adapter) Reload(ctx context.Context, account models.Account) (models.Authentication, error) {
	const op = "iutlannion.Reload"

	if account.Auth.Username == "" || account.Auth.Password == "" {
		return models.Authentication{}, &models.UnauthenticatedError{Service: models.ServiceIUTLannion}
	}
	body := map[string]string{
		"login":    account.Auth.Username,
		"password": account.Auth.Password,
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := a.request(ctx, http.MethodPost, "/auth/cas", "", body, &out); err != nil {
		return models.Authentication{}, fmt.Errorf("%s: %w", op, err)
	}

	auth := account.Auth
	auth.Token = out.Token
	return auth, nil
}

func (a *Adapter) request(ctx context.Context, method, path, token string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// levelName переводит числовой уровень ScoDoc в шкалу компетенций.
func levelName(level float64) string {
	switch {
	case level >= 3.5:
		return "Excellent"
	case level >= 2.5:
		return "Satisfactory"
	case level >= 1.5:
		return "Fragile"
	default:
		return "Insufficient"
	}
}
