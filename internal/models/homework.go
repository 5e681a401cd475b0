package models

// Homework — домашнее задание, привязанное к номеру учебной недели.
type Homework struct {
	ID          string   `json:"id"`
	SubjectName string   `json:"subject_name"`
	Content     string   `json:"content"`
	Due         int64    `json:"due"`
	Done        bool     `json:"done"`
	Attachments []Attachment `json:"attachments,omitempty"`
	// Custom помечает задания, добавленные пользователем вручную: при
	// перезаписи недели из внешнего сервиса они сохраняются.
	Custom bool `json:"custom,omitempty"`
}
