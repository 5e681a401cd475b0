// Package izly реализует адаптер платёжного сервиса Izly (студенческие
// столовые CROUS): история операций, баланс, QR-аватар. Сессия обновляется
// по паре устройство + токен.
package izly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Тариф социального обеда CROUS, используется для оценки остатка обедов.
const mealPrice = 3.30

// Adapter — адаптер Izly.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
}

// New создает адаптер Izly.
func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Service возвращает тег сервиса.
func (a *Adapter) Service() models.Service {
	return models.ServiceIzly
}

func checkSession(account models.Account) error {
	if account.Auth.Token == "" {
		return &models.UnauthenticatedError{Service: models.ServiceIzly}
	}
	return nil
}

type operationPayload struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Label  string    `json:"label"`
	Kind   string    `json:"type"` // "PAYMENT" или "TOPUP"
}

// ReservationHistory возвращает операции по счёту. Платежи приводятся к
// отрицательной сумме независимо от знака в ответе сервиса.
func (a *Adapter) ReservationHistory(ctx context.Context, account models.Account) ([]models.ReservationHistory, error) {
	const op = "izly.ReservationHistory"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var raw []operationPayload
	if err := a.request(ctx, http.MethodGet, "/operations", account.Auth.Token, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.ReservationHistory, 0, len(raw))
	for _, o := range raw {
		amount := o.Amount
		if o.Kind == "PAYMENT" && amount > 0 {
			amount = -amount
		}
		out = append(out, models.ReservationHistory{
			Timestamp: o.Date.UnixMilli(),
			Amount:    amount,
			Currency:  "€",
			Label:     o.Label,
		})
	}
	return out, nil
}

// Balances возвращает баланс счёта с оценкой остатка обедов по тарифу CROUS.
func (a *Adapter) Balances(ctx context.Context, account models.Account) ([]models.Balance, error) {
	const op = "izly.Balances"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var out struct {
		Amount float64 `json:"amount"`
	}
	if err := a.request(ctx, http.MethodGet, "/balance", account.Auth.Token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	balance := models.Balance{Amount: out.Amount, Currency: "€", Label: "Izly"}
	if out.Amount > 0 {
		balance.RemainingMeals = int(out.Amount / mealPrice)
	}
	return []models.Balance{balance}, nil
}

// ProfilePicture возвращает аватар владельца счёта.
func (a *Adapter) ProfilePicture(ctx context.Context, account models.Account) (string, error) {
	const op = "izly.ProfilePicture"

	if err := checkSession(account); err != nil {
		return "", err
	}
	var out struct {
		PictureURL string `json:"pictureUrl"`
	}
	if err := a.request(ctx, http.MethodGet, "/profile", account.Auth.Token, nil, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out.PictureURL, nil
}

// Reload обменивает идентификатор устройства и refresh-токен на новую сессию.
func (a *Adapter) Reload(ctx context.Context, account models.Account) (models.Authentication, error) {
	const op = "izly.Reload"

	if account.Auth.DeviceID == "" || account.Auth.RefreshToken == "" {
		return models.Authentication{}, &models.UnauthenticatedError{Service: models.ServiceIzly}
	}
	body := map[string]string{
		"deviceId":     account.Auth.DeviceID,
		"refreshToken": account.Auth.RefreshToken,
	}
	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := a.request(ctx, http.MethodPost, "/auth/refresh", "", body, &out); err != nil {
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
