// Package alise реализует адаптер сервиса столовой Alise: дневное меню,
// история операций и баланс. Сервис адресует ученика по номеру карты.
package alise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Adapter — адаптер Alise.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
}

// New создает адаптер Alise.
func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Service возвращает тег сервиса.
func (a *Adapter) Service() models.Service {
	return models.ServiceAlise
}

func checkSession(account models.Account) error {
	if account.Auth.Token == "" || account.Auth.CardNumber == "" {
		return &models.UnauthenticatedError{Service: models.ServiceAlise}
	}
	return nil
}

type historyPayload struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Label  string    `json:"label"`
}

type menuPayload struct {
	Date   string   `json:"date"` // "2006-01-02"
	Dishes []string `json:"dishes"`
}

// ReservationHistory возвращает операции по карте.
func (a *Adapter) ReservationHistory(ctx context.Context, account models.Account) ([]models.ReservationHistory, error) {
	const op = "alise.ReservationHistory"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var raw []historyPayload
	path := "/cards/" + account.Auth.CardNumber + "/operations"
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.ReservationHistory, 0, len(raw))
	for _, h := range raw {
		out = append(out, models.ReservationHistory{
			Timestamp: h.Date.UnixMilli(),
			Amount:    h.Amount,
			Currency:  "€",
			Label:     h.Label,
		})
	}
	return out, nil
}

// Balances возвращает баланс карты.
func (a *Adapter) Balances(ctx context.Context, account models.Account) ([]models.Balance, error) {
	const op = "alise.Balances"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var out struct {
		Amount float64 `json:"amount"`
	}
	path := "/cards/" + account.Auth.CardNumber + "/balance"
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return []models.Balance{{Amount: out.Amount, Currency: "€", Label: "Self"}}, nil
}

// Menu возвращает меню на запрошенный день. Alise иногда отдаёт меню соседнего
// дня, поэтому дата ответа сверяется с запрошенной: при расхождении результат
// содержит только дату без приёмов пищи.
func (a *Adapter) Menu(ctx context.Context, account models.Account, date time.Time) (models.Menu, error) {
	const op = "alise.Menu"

	if err := checkSession(account); err != nil {
		return models.Menu{}, err
	}
	day := date.UTC().Truncate(24 * time.Hour)
	menu := models.Menu{Date: day.UnixMilli()}

	var raw menuPayload
	path := "/cards/" + account.Auth.CardNumber + "/menu?date=" + day.Format("2006-01-02")
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &raw); err != nil {
		return models.Menu{}, fmt.Errorf("%s: %w", op, err)
	}

	if raw.Date != day.Format("2006-01-02") || len(raw.Dishes) == 0 {
		return menu, nil
	}
	main := make([]models.FoodItem, 0, len(raw.Dishes))
	for _, d := range raw.Dishes {
		main = append(main, models.FoodItem{Name: d})
	}
	menu.Lunch = &models.Meal{Main: main}
	return menu, nil
}

// Reload выполняет вход по номеру карты и паролю.
func (a *Adapter) Reload(ctx context.Context, account models.Account) (models.Authentication, error) {
	const op = "alise.Reload"

	if account.Auth.CardNumber == "" || account.Auth.Password == "" {
		return models.Authentication{}, &models.UnauthenticatedError{Service: models.ServiceAlise}
	}
	body := map[string]string{
		"cardNumber": account.Auth.CardNumber,
		"password":   account.Auth.Password,
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := a.request(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
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
