package models

// Absence — отсутствие на занятиях за интервал времени.
type Absence struct {
	ID                   string   `json:"id"`
	FromTimestamp        int64    `json:"from_timestamp"`
	ToTimestamp          int64    `json:"to_timestamp"`
	Justified            bool     `json:"justified"`
	Hours                string   `json:"hours"` // отформатированная длительность, например "4h00"
	AdministrativelyFixed bool    `json:"administratively_fixed"`
	Reasons              []string `json:"reasons,omitempty"`
}

// Delay — опоздание на занятие.
type Delay struct {
	ID            string   `json:"id"`
	Timestamp     int64    `json:"timestamp"`
	Duration      int      `json:"duration"` // минуты
	Justified     bool     `json:"justified"`
	Justification string   `json:"justification,omitempty"`
	Reasons       []string `json:"reasons,omitempty"`
}

// PunishmentHomework — дополнительное задание, выданное вместе с наказанием.
type PunishmentHomework struct {
	Text      string   `json:"text,omitempty"`
	Documents []string `json:"documents,omitempty"`
}

// PunishmentReason — причина наказания с приложенными документами.
type PunishmentReason struct {
	Circumstances string   `json:"circumstances,omitempty"`
	Text          string   `json:"text,omitempty"`
	Documents     []string `json:"documents,omitempty"`
}

// Punishment — дисциплинарное наказание.
type Punishment struct {
	ID           string             `json:"id"`
	Duration     int                `json:"duration"` // минуты
	GivenBy      string             `json:"given_by,omitempty"`
	Timestamp    int64              `json:"timestamp"`
	DuringLesson bool               `json:"during_lesson"`
	Exclusion    bool               `json:"exclusion"`
	Homework     PunishmentHomework `json:"homework"`
	Nature       string             `json:"nature,omitempty"`
	Reason       PunishmentReason   `json:"reason"`
	Schedulable  bool               `json:"schedulable"`
	Schedule     []int64            `json:"schedule,omitempty"`
}

// Observation — замечание преподавателя.
type Observation struct {
	ID          string `json:"id"`
	Timestamp   int64  `json:"timestamp"`
	SectionName string `json:"section_name,omitempty"`
	SubjectName string `json:"subject_name,omitempty"`
	Reasons     string `json:"reasons,omitempty"`
	ShouldParentsJustify bool `json:"should_parents_justify"`
}

// Attendance собирает все события посещаемости за период.
type Attendance struct {
	Delays       []Delay       `json:"delays"`
	Absences     []Absence     `json:"absences"`
	Punishments  []Punishment  `json:"punishments"`
	Observations []Observation `json:"observations"`
}
