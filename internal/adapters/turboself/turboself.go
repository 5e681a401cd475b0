// Package turboself реализует адаптер сервиса столовой Turboself: недельное
// меню, история операций, балансы и аватар.
package turboself

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Adapter — адаптер Turboself.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
}

// New создает адаптер Turboself.
func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Service возвращает тег сервиса.
func (a *Adapter) Service() models.Service {
	return models.ServiceTurboself
}

func checkSession(account models.Account) error {
	if account.Auth.Token == "" {
		return &models.UnauthenticatedError{Service: models.ServiceTurboself}
	}
	return nil
}

type foodPayload struct {
	Name      string   `json:"name"`
	Allergens []string `json:"allergens"`
}

type mealPayload struct {
	Starters []foodPayload `json:"starters"`
	Dishes   []foodPayload `json:"dishes"`
	Sides    []foodPayload `json:"sides"`
	Cheeses  []foodPayload `json:"cheeses"`
	Desserts []foodPayload `json:"desserts"`
}

type dayPayload struct {
	Date   string       `json:"date"` // "2006-01-02"
	Lunch  *mealPayload `json:"lunch"`
	Dinner *mealPayload `json:"dinner"`
}

type historyPayload struct {
	Date   time.Time `json:"date"`
	Amount int       `json:"amount"` // центы, списание отрицательное
	Label  string    `json:"label"`
}

type balancePayload struct {
	Amount    int    `json:"amount"` // центы
	Label     string `json:"label"`
	MealPrice int    `json:"mealPrice"` // центы, 0 если заведение не публикует цену
}

// Menu возвращает меню на запрошенный день. Turboself отдаёт неделю целиком,
// адаптер выбирает нужный день; если дня в ответе нет, меню пустое.
func (a *Adapter) Menu(ctx context.Context, account models.Account, date time.Time) (models.Menu, error) {
	const op = "turboself.Menu"

	if err := checkSession(account); err != nil {
		return models.Menu{}, err
	}
	day := date.UTC().Truncate(24 * time.Hour)
	menu := models.Menu{Date: day.UnixMilli()}

	var week []dayPayload
	path := fmt.Sprintf("/hosts/%s/menus?week=%s", account.Auth.Username, day.Format("2006-01-02"))
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &week); err != nil {
		return models.Menu{}, fmt.Errorf("%s: %w", op, err)
	}

	want := day.Format("2006-01-02")
	for _, d := range week {
		if d.Date != want {
			continue
		}
		menu.Lunch = convertMeal(d.Lunch)
		menu.Dinner = convertMeal(d.Dinner)
		break
	}
	return menu, nil
}

// ReservationHistory возвращает историю операций по счёту.
func (a *Adapter) ReservationHistory(ctx context.Context, account models.Account) ([]models.ReservationHistory, error) {
	const op = "turboself.ReservationHistory"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var raw []historyPayload
	path := "/hosts/" + account.Auth.Username + "/history"
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.ReservationHistory, 0, len(raw))
	for _, h := range raw {
		out = append(out, models.ReservationHistory{
			Timestamp: h.Date.UnixMilli(),
			Amount:    float64(h.Amount) / 100,
			Currency:  "€",
			Label:     h.Label,
		})
	}
	return out, nil
}

// Balances возвращает балансы счетов. RemainingMeals считается по цене обеда,
// если заведение её публикует.
func (a *Adapter) Balances(ctx context.Context, account models.Account) ([]models.Balance, error) {
	const op = "turboself.Balances"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	var raw []balancePayload
	path := "/hosts/" + account.Auth.Username + "/balances"
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Balance, 0, len(raw))
	for _, b := range raw {
		balance := models.Balance{
			Amount:   float64(b.Amount) / 100,
			Currency: "€",
			Label:    b.Label,
		}
		if b.MealPrice > 0 && b.Amount > 0 {
			balance.RemainingMeals = b.Amount / b.MealPrice
		}
		out = append(out, balance)
	}
	return out, nil
}

// ProfilePicture возвращает аватар владельца счёта.
func (a *Adapter) ProfilePicture(ctx context.Context, account models.Account) (string, error) {
	const op = "turboself.ProfilePicture"

	if err := checkSession(account); err != nil {
		return "", err
	}
	var out struct {
		PictureURL string `json:"pictureUrl"`
	}
	path := "/hosts/" + account.Auth.Username
	if err := a.request(ctx, http.MethodGet, path, account.Auth.Token, nil, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return out.PictureURL, nil
}

// Reload выполняет вход по логину и паролю и возвращает свежий токен.
func (a *Adapter) Reload(ctx context.Context, account models.Account) (models.Authentication, error) {
	const op = "turboself.Reload"

	if account.Auth.Username == "" || account.Auth.Password == "" {
		return models.Authentication{}, &models.UnauthenticatedError{Service: models.ServiceTurboself}
	}
	body := map[string]string{
		"username": account.Auth.Username,
		"password": account.Auth.Password,
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

func convertMeal(m *mealPayload) *models.Meal {
	if m == nil {
		return nil
	}
	return &models.Meal{
		Entry:   convertFood(m.Starters),
		Main:    convertFood(m.Dishes),
		Side:    convertFood(m.Sides),
		Cheese:  convertFood(m.Cheeses),
		Dessert: convertFood(m.Desserts),
	}
}

func convertFood(items []foodPayload) []models.FoodItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.FoodItem, 0, len(items))
	for _, f := range items {
		out = append(out, models.FoodItem{Name: f.Name, Allergens: f.Allergens})
	}
	return out
}
