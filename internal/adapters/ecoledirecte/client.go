package ecoledirecte

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Client — HTTP-клиент к API EcoleDirecte.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает клиент EcoleDirecte.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type filePayload struct {
	Name string `json:"libelle"`
	URL  string `json:"url"`
}

type messagePayload struct {
	ID      string        `json:"id"`
	Subject string        `json:"subject"`
	Date    time.Time     `json:"date"`
	From    string        `json:"from"`
	Content string        `json:"content"`
	Read    bool          `json:"read"`
	Files   []filePayload `json:"files"`
}

// attendanceItemPayload — событие общей ленты посещаемости. Тип события
// задаёт поле Kind, дата — текстовая французская фраза в DisplayDate.
type attendanceItemPayload struct {
	ID          string `json:"id"`
	Kind        string `json:"typeElement"`
	DisplayDate string `json:"displayDate"`
	Justified   bool   `json:"justifie"`
	Closed      bool   `json:"regularise"`
	Motive      string `json:"motif"`
	Comment     string `json:"commentaire"`
	Hours       string `json:"libelle"`
	By          string `json:"par"`
	Nature      string `json:"nature"`
}

// News запрашивает сообщения заведения.
func (c *Client) News(ctx context.Context, auth models.Authentication) ([]messagePayload, error) {
	var out struct {
		Messages []messagePayload `json:"messages"`
	}
	err := c.request(ctx, auth, "/eleves/"+auth.Username+"/messages", nil, &out)
	return out.Messages, err
}

// MarkNewsRead помечает сообщение прочитанным.
func (c *Client) MarkNewsRead(ctx context.Context, auth models.Authentication, informationID string, read bool) error {
	body := map[string]any{"id": informationID, "read": read}
	return c.request(ctx, auth, "/eleves/"+auth.Username+"/messages/read", body, nil)
}

// AttendanceFeed запрашивает общую ленту событий посещаемости.
func (c *Client) AttendanceFeed(ctx context.Context, auth models.Authentication) ([]attendanceItemPayload, error) {
	var out struct {
		AbsencesRetards []attendanceItemPayload `json:"absencesRetards"`
		Sanctions       []attendanceItemPayload `json:"sanctionsEncouragements"`
	}
	err := c.request(ctx, auth, "/eleves/"+auth.Username+"/viescolaire", nil, &out)
	if err != nil {
		return nil, err
	}
	return append(out.AbsencesRetards, out.Sanctions...), nil
}

// ProfilePicture запрашивает аватар ученика.
func (c *Client) ProfilePicture(ctx context.Context, auth models.Authentication) (string, error) {
	var out struct {
		Photo string `json:"photo"`
	}
	err := c.request(ctx, auth, "/eleves/"+auth.Username+"/photo", nil, &out)
	return out.Photo, err
}

// Authenticate выполняет вход и возвращает токен сессии.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"identifiant": username, "motdepasse": password}
	var out struct {
		Token string `json:"token"`
	}
	err := c.request(ctx, models.Authentication{}, "/login", body, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// request выполняет вызов API. EcoleDirecte принимает и GET-запросы только
// методом POST с токеном в заголовке.
func (c *Client) request(ctx context.Context, auth models.Authentication, path string, body, out any) error {
	var buf bytes.Buffer
	if body == nil {
		body = map[string]any{}
	}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if auth.Token != "" {
		req.Header.Set("X-Token", auth.Token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
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
