package models

// FoodItem — одно блюдо в меню столовой.
type FoodItem struct {
	Name      string   `json:"name"`
	Allergens []string `json:"allergens,omitempty"`
	Labels    []string `json:"labels,omitempty"`
}

// Meal — один приём пищи. Любая категория может отсутствовать,
// если сервис её не публикует.
type Meal struct {
	Entry   []FoodItem `json:"entry,omitempty"`
	Main    []FoodItem `json:"main,omitempty"`
	Side    []FoodItem `json:"side,omitempty"`
	Cheese  []FoodItem `json:"cheese,omitempty"`
	Dessert []FoodItem `json:"dessert,omitempty"`
	Drink   []FoodItem `json:"drink,omitempty"`
}

// Menu — меню столовой на один день. Отсутствие Lunch и Dinner — валидный
// результат: на запрошенную дату меню не опубликовано.
type Menu struct {
	Date   int64 `json:"date"` // полночь запрошенного дня, epoch-миллисекунды UTC
	Lunch  *Meal `json:"lunch,omitempty"`
	Dinner *Meal `json:"dinner,omitempty"`
}
