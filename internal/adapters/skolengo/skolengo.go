// Package skolengo реализует адаптер сервиса Skolengo: новости, посещаемость
// и аватар через общий API, сессия обновляется по refresh-токену.
package skolengo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Adapter — адаптер Skolengo.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
}

// New создает адаптер Skolengo.
func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Service возвращает тег сервиса.
func (a *Adapter) Service() models.Service {
	return models.ServiceSkolengo
}

func checkSession(account models.Account) error {
	if account.Auth.Token == "" || account.Auth.EstablishmentID == "" {
		return &models.UnauthenticatedError{Service: models.ServiceSkolengo}
	}
	return nil
}

type newsPayload struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	PublishedAt     time.Time `json:"publishedAt"`
	Author          string    `json:"author"`
	Category        string    `json:"category"`
	Content         string    `json:"content"`
	IllustrationURL string    `json:"illustrationUrl"`
}

type absencePayload struct {
	ID         string    `json:"id"`
	Kind       string    `json:"type"` // "ABSENCE" или "LATENESS"
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Justified  bool      `json:"justified"`
	Reason     string    `json:"reason"`
	Comment    string    `json:"comment"`
}

// News возвращает новости заведения.
func (a *Adapter) News(ctx context.Context, account models.Account) ([]models.Information, error) {
	const op = "skolengo.News"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var raw []newsPayload
	path := "/schools/" + account.Auth.EstablishmentID + "/news"
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Information, 0, len(raw))
	for _, n := range raw {
		var attachments []models.Attachment
		if n.IllustrationURL != "" {
			attachments = []models.Attachment{{Type: "link", Name: n.Title, URL: n.IllustrationURL}}
		}
		out = append(out, models.Information{
			ID:          n.ID,
			Title:       n.Title,
			Date:        n.PublishedAt.UnixMilli(),
			Author:      n.Author,
			Category:    n.Category,
			Content:     n.Content,
			Attachments: attachments,
		})
	}
	return out, nil
}

// SetNewsRead ничего не отправляет: Skolengo не хранит состояние прочитанности,
// отметка живёт только в локальном кеше.
func (a *Adapter) SetNewsRead(_ context.Context, account models.Account, _ string, _ bool) error {
	return checkSession(account)
}

// Attendance возвращает события посещаемости. Период Skolengo не поддерживает:
// лента всегда за учебный год.
func (a *Adapter) Attendance(ctx context.Context, account models.Account, _ string) (models.Attendance, error) {
	const op = "skolengo.Attendance"

	if err := checkSession(account); err != nil {
		return models.Attendance{}, err
	}
	var raw []absencePayload
	path := "/students/" + account.Auth.Username + "/absence-files"
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &raw); err != nil {
		return models.Attendance{}, fmt.Errorf("%s: %w", op, err)
	}

	att := models.Attendance{
		Delays:       []models.Delay{},
		Absences:     []models.Absence{},
		Punishments:  []models.Punishment{},
		Observations: []models.Observation{},
	}
	for _, item := range raw {
		if item.Kind == "LATENESS" {
			att.Delays = append(att.Delays, models.Delay{
				ID:            item.ID,
				Timestamp:     item.StartDate.UnixMilli(),
				Duration:      int(item.EndDate.Sub(item.StartDate).Minutes()),
				Justified:     item.Justified,
				Justification: item.Comment,
				Reasons:       reasonList(item.Reason),
			})
			continue
		}
		att.Absences = append(att.Absences, models.Absence{
			ID:            item.ID,
			FromTimestamp: item.StartDate.UnixMilli(),
			ToTimestamp:   item.EndDate.UnixMilli(),
			Justified:     item.Justified,
			Hours:         formatHours(item.EndDate.Sub(item.StartDate)),
			Reasons:       reasonList(item.Reason),
		})
	}
	return att, nil
}

// ProfilePicture возвращает аватар ученика.
func (a *Adapter) ProfilePicture(ctx context.Context, account models.Account) (string, error) {
	const op = "skolengo.ProfilePicture"

	if err := checkSession(account); err != nil {
		return "", err
	}
	var out struct {
		PhotoURL string `json:"photoUrl"`
	}
	path := "/students/" + account.Auth.Username
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out.PhotoURL, nil
}

// Reload обменивает refresh-токен на новую пару токенов.
func (a *Adapter) Reload(ctx context.Context, account models.Account) (models.Authentication, error) {
	const op = "skolengo.Reload"

	if account.Auth.RefreshToken == "" {
		return models.Authentication{}, &models.UnauthenticatedError{Service: models.ServiceSkolengo}
	}
	body := map[string]string{"refreshToken": account.Auth.RefreshToken}
	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := a.request(ctx, http.MethodPost, "/oauth/refresh", "", body, &out); err != nil {
		return models.Authentication{}, fmt.Errorf("%s: %w", op, err)
	}

	auth := account.Auth
	auth.Token = out.AccessToken
	auth.RefreshToken = out.RefreshToken
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

func reasonList(reason string) []string {
	if reason == "" {
		return nil
	}
	return []string{reason}
}

func formatHours(d time.Duration) string {
	return fmt.Sprintf("%dh%02d", int(d.Hours()), int(d.Minutes())%60)
}
