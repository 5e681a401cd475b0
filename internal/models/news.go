package models

// Attachment — вложение к новости.
type Attachment struct {
	Type string `json:"type"` // "file" или "link"
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Information — новость или объявление учебного заведения.
type Information struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Date         int64        `json:"date"`
	Author       string       `json:"author,omitempty"`
	Category     string       `json:"category,omitempty"`
	Content      string       `json:"content"`
	Read         bool         `json:"read"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}
