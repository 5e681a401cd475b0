package pronote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Client — HTTP-клиент к API инстанса Pronote. Адрес инстанса передаётся
// в каждый вызов, потому что он принадлежит аккаунту, а не приложению.
type Client struct {
	httpClient *http.Client
}

// NewClient создает клиент с таймаутом по умолчанию.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 15 * time.Second}}
}

type periodPayload struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type skillPayload struct {
	Coefficient int    `json:"coefficient"`
	Level       string `json:"level"`
	Domain      string `json:"domain"`
	Item        string `json:"item"`
}

type evaluationPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"subject"`
	Description string         `json:"description"`
	Date        time.Time      `json:"date"`
	Coefficient int            `json:"coefficient"`
	Levels      []string       `json:"levels"`
	Skills      []skillPayload `json:"skills"`
	Teacher     string         `json:"teacher"`
}

type attachmentPayload struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type newsPayload struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Date        time.Time           `json:"date"`
	Author      string              `json:"author"`
	Category    string              `json:"category"`
	Content     string              `json:"content"`
	Read        bool                `json:"read"`
	Attachments []attachmentPayload `json:"attachments"`
}

type delayPayload struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Minutes       int       `json:"minutes"`
	Justified     bool      `json:"justified"`
	Justification string    `json:"justification"`
	Reasons       []string  `json:"reasons"`
}

type absencePayload struct {
	ID                    string    `json:"id"`
	From                  time.Time `json:"from"`
	To                    time.Time `json:"to"`
	Justified             bool      `json:"justified"`
	Hours                 string    `json:"hours"`
	AdministrativelyFixed bool      `json:"administratively_fixed"`
	Reasons               []string  `json:"reasons"`
}

type punishmentPayload struct {
	ID                string    `json:"id"`
	Date              time.Time `json:"date"`
	Minutes           int       `json:"minutes"`
	GivenBy           string    `json:"given_by"`
	DuringLesson      bool      `json:"during_lesson"`
	Exclusion         bool      `json:"exclusion"`
	HomeworkText      string    `json:"homework_text"`
	HomeworkDocuments []string  `json:"homework_documents"`
	Nature            string    `json:"nature"`
	Circumstances     string    `json:"circumstances"`
	ReasonText        string    `json:"reason_text"`
	ReasonDocuments   []string  `json:"reason_documents"`
	Schedulable       bool      `json:"schedulable"`
}

type observationPayload struct {
	ID                   string    `json:"id"`
	Date                 time.Time `json:"date"`
	Section              string    `json:"section"`
	Subject              string    `json:"subject"`
	Reason               string    `json:"reason"`
	ShouldParentsJustify bool      `json:"should_parents_justify"`
}

type attendancePayload struct {
	Delays       []delayPayload       `json:"delays"`
	Absences     []absencePayload     `json:"absences"`
	Punishments  []punishmentPayload  `json:"punishments"`
	Observations []observationPayload `json:"observations"`
}

type foodPayload struct {
	Name      string   `json:"name"`
	Allergens []string `json:"allergens"`
	Labels    []string `json:"labels"`
}

type mealPayload struct {
	Entry   []foodPayload `json:"entry"`
	Main    []foodPayload `json:"main"`
	Side    []foodPayload `json:"side"`
	Cheese  []foodPayload `json:"cheese"`
	Dessert []foodPayload `json:"dessert"`
	Drink   []foodPayload `json:"drink"`
}

type menuPayload struct {
	Date   string       `json:"date"` // "2006-01-02"
	Lunch  *mealPayload `json:"lunch"`
	Dinner *mealPayload `json:"dinner"`
}

type homeworkPayload struct {
	ID          string              `json:"id"`
	Subject     string              `json:"subject"`
	Content     string              `json:"content"`
	Due         time.Time           `json:"due"`
	Done        bool                `json:"done"`
	Attachments []attachmentPayload `json:"attachments"`
}

// EvaluationPeriods запрашивает периоды вкладки оценок.
func (c *Client) EvaluationPeriods(ctx context.Context, auth models.Authentication) ([]periodPayload, error) {
	var out []periodPayload
	err := c.get(ctx, auth, "/evaluations/periods", nil, &out)
	return out, err
}

// Evaluations запрашивает оценки компетенций за период.
func (c *Client) Evaluations(ctx context.Context, auth models.Authentication, periodName string) ([]evaluationPayload, error) {
	var out []evaluationPayload
	err := c.get(ctx, auth, "/evaluations", url.Values{"period": {periodName}}, &out)
	return out, err
}

// News запрашивает новости заведения.
func (c *Client) News(ctx context.Context, auth models.Authentication) ([]newsPayload, error) {
	var out []newsPayload
	err := c.get(ctx, auth, "/news", nil, &out)
	return out, err
}

// MarkNewsRead помечает новость прочитанной.
func (c *Client) MarkNewsRead(ctx context.Context, auth models.Authentication, informationID string, read bool) error {
	body := map[string]any{"id": informationID, "read": read}
	return c.post(ctx, auth, "/news/read", body, nil)
}

// Attendance запрашивает ленту посещаемости за период.
func (c *Client) Attendance(ctx context.Context, auth models.Authentication, periodName string) (attendancePayload, error) {
	var out attendancePayload
	err := c.get(ctx, auth, "/attendance", url.Values{"period": {periodName}}, &out)
	return out, err
}

// Menu запрашивает меню на день. nil без ошибки — меню не опубликовано.
func (c *Client) Menu(ctx context.Context, auth models.Authentication, date time.Time) (*menuPayload, error) {
	var out []menuPayload
	day := date.UTC().Format("2006-01-02")
	if err := c.get(ctx, auth, "/menu", url.Values{"date": {day}}, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Date == day {
			return &out[i], nil
		}
	}
	return nil, nil
}

// Homeworks запрашивает домашние задания за учебную неделю.
func (c *Client) Homeworks(ctx context.Context, auth models.Authentication, epochWeek int) ([]homeworkPayload, error) {
	var out []homeworkPayload
	err := c.get(ctx, auth, "/homework", url.Values{"week": {strconv.Itoa(epochWeek)}}, &out)
	return out, err
}

// ProfilePicture запрашивает аватар ученика в base64.
func (c *Client) ProfilePicture(ctx context.Context, auth models.Authentication) (string, error) {
	var out struct {
		Picture string `json:"picture"`
	}
	err := c.get(ctx, auth, "/user/picture", nil, &out)
	return out.Picture, err
}

// Authenticate выполняет вход по логину и паролю и возвращает токен сессии.
func (c *Client) Authenticate(ctx context.Context, instanceURL, username, password, deviceID string) (string, error) {
	body := map[string]string{
		"username":  username,
		"password":  password,
		"device_id": deviceID,
	}
	var out struct {
		Token string `json:"token"`
	}
	err := c.request(ctx, http.MethodPost, instanceURL+"/auth/login", "", body, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) get(ctx context.Context, auth models.Authentication, path string, query url.Values, out any) error {
	target := auth.InstanceURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return c.request(ctx, http.MethodGet, target, auth.Token, nil, out)
}

func (c *Client) post(ctx context.Context, auth models.Authentication, path string, body, out any) error {
	return c.request(ctx, http.MethodPost, auth.InstanceURL+path, auth.Token, body, out)
}

func (c *Client) request(ctx context.Context, method, target, token string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
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
