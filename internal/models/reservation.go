package models

// ReservationHistory — одна операция по счёту столовой: пополнение или списание.
type ReservationHistory struct {
	Timestamp int64   `json:"timestamp"`
	Amount    float64 `json:"amount"` // отрицательное значение — списание
	Currency  string  `json:"currency"`
	Label     string  `json:"label"`
}

// Balance — текущий баланс счёта столовой.
type Balance struct {
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Label          string  `json:"label,omitempty"`
	RemainingMeals int     `json:"remaining_meals,omitempty"` // сколько обедов хватит при текущей цене
}
