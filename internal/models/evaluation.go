package models

// Period — школьный период (триместр, семестр), ограничивающий выборку оценок.
// Все отметки времени — epoch-миллисекунды в UTC.
type Period struct {
	Name           string `json:"name"`
	StartTimestamp int64  `json:"start_timestamp"`
	EndTimestamp   int64  `json:"end_timestamp"`
}

// Contains сообщает, попадает ли отметка времени в интервал периода.
func (p Period) Contains(timestamp int64) bool {
	return timestamp >= p.StartTimestamp && timestamp <= p.EndTimestamp
}

// Skill — оцениваемая компетенция внутри одной оценки.
type Skill struct {
	Coefficient int    `json:"coefficient"`
	Level       string `json:"level"`
	DomainName  string `json:"domain_name"`
	ItemName    string `json:"item_name"`
}

// Evaluation — оценка компетенций (не числовая отметка).
type Evaluation struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	SubjectID   string  `json:"subject_id,omitempty"`
	SubjectName string  `json:"subject_name"`
	Description string  `json:"description,omitempty"`
	Timestamp   int64   `json:"timestamp"`
	Coefficient int     `json:"coefficient"`
	Levels      []string `json:"levels,omitempty"`
	Skills      []Skill `json:"skills"`
	Teacher     string  `json:"teacher,omitempty"`
}
