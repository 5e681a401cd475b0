// Package ard реализует адаптер кассового сервиса ARD: финансовая история и
// балансы по всем кошелькам семьи. Обновление сессии ARD не поддерживает,
// токен живёт до конца учебного года.
package ard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Adapter — адаптер ARD.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
}

// New создает адаптер ARD.
func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Service возвращает тег сервиса.
func (a *Adapter) Service() models.Service {
	return models.ServiceARD
}

func checkSession(account models.Account) error {
	if account.Auth.Token == "" || account.Auth.EstablishmentID == "" {
		return &models.UnauthenticatedError{Service: models.ServiceARD}
	}
	return nil
}

type operationPayload struct {
	Date   time.Time `json:"date"`
	Debit  float64   `json:"debit"`
	Credit float64   `json:"credit"`
	Label  string    `json:"label"`
}

type walletPayload struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// ReservationHistory возвращает финансовую историю всех кошельков. Дебет и
// кредит ARD отдаёт раздельно, в истории операция одна со знаком.
func (a *Adapter) ReservationHistory(ctx context.Context, account models.Account) ([]models.ReservationHistory, error) {
	const op = "ard.ReservationHistory"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var raw []operationPayload
	path := "/establishments/" + account.Auth.EstablishmentID + "/operations"
	if err := a.get(ctx, path, account.Auth.Token, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.ReservationHistory, 0, len(raw))
	for _, o := range raw {
		out = append(out, models.ReservationHistory{
			Timestamp: o.Date.UnixMilli(),
			Amount:    o.Credit - o.Debit,
			Currency:  "€",
			Label:     o.Label,
		})
	}
	return out, nil
}

// Balances возвращает баланс каждого кошелька.
func (a *Adapter) Balances(ctx context.Context, account models.Account) ([]models.Balance, error) {
	const op = "ard.Balances"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var raw []walletPayload
	path := "/establishments/" + account.Auth.EstablishmentID + "/wallets"
	if err := a.get(ctx, path, account.Auth.Token, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Balance, 0, len(raw))
	for _, w := range raw {
		out = append(out, models.Balance{
			Amount:   w.Balance,
			Currency: "€",
			Label:    w.Name,
		})
	}
	return out, nil
}

func (a *Adapter) get(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
