package frdate

import (
	"testing"
	"time"
)

func TestParseInterval_TableTests(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tests := []struct {
		name      string
		phrase    string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "single day with time range",
			phrase:    "le mercredi 21 février 2024 de 08:10 à 16:10",
			wantStart: time.Date(2024, 2, 21, 8, 10, 0, 0, paris),
			wantEnd:   time.Date(2024, 2, 21, 16, 10, 0, 0, paris),
		},
		{
			name:      "single day without time defaults to full day",
			phrase:    "le jeudi 22 février 2024",
			wantStart: time.Date(2024, 2, 22, 0, 0, 0, 0, paris),
			wantEnd:   time.Date(2024, 2, 22, 23, 59, 0, 0, paris),
		},
		{
			name:      "range with times on both sides",
			phrase:    "du mercredi 27 novembre 2024 à 08:10 au vendredi 06 décembre 2024 à 08:10",
			wantStart: time.Date(2024, 11, 27, 8, 10, 0, 0, paris),
			wantEnd:   time.Date(2024, 12, 6, 8, 10, 0, 0, paris),
		},
		{
			name:      "range without times spans both full days",
			phrase:    "du mercredi 21 février 2024 au jeudi 22 février 2024",
			wantStart: time.Date(2024, 2, 21, 0, 0, 0, 0, paris),
			wantEnd:   time.Date(2024, 2, 22, 23, 59, 0, 0, paris),
		},
		{
			name:      "uppercase input is normalized",
			phrase:    "Le Mercredi 21 Février 2024 de 08:10 à 16:10",
			wantStart: time.Date(2024, 2, 21, 8, 10, 0, 0, paris),
			wantEnd:   time.Date(2024, 2, 21, 16, 10, 0, 0, paris),
		},
		{
			name:      "month without diacritics",
			phrase:    "le 15 decembre 2023",
			wantStart: time.Date(2023, 12, 15, 0, 0, 0, 0, paris),
			wantEnd:   time.Date(2023, 12, 15, 23, 59, 0, 0, paris),
		},
		{
			name:      "date without weekday",
			phrase:    "le 21 février 2024 de 10:00 à 12:00",
			wantStart: time.Date(2024, 2, 21, 10, 0, 0, 0, paris),
			wantEnd:   time.Date(2024, 2, 21, 12, 0, 0, 0, paris),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInterval(tt.phrase, paris)
			if err != nil {
				t.Fatalf("ParseInterval(%q) error: %v", tt.phrase, err)
			}
			if !got.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", got.Start, tt.wantStart)
			}
			if !got.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", got.End, tt.wantEnd)
			}
		})
	}
}

func TestParseInterval_Errors(t *testing.T) {
	tests := []struct {
		name   string
		phrase string
	}{
		{name: "empty phrase", phrase: ""},
		{name: "unsupported form", phrase: "demain à 08:00"},
		{name: "unknown month", phrase: "le 21 smarch 2024"},
		{name: "range without au", phrase: "du mercredi 21 février 2024"},
		{name: "garbage day", phrase: "le xx février 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseInterval(tt.phrase, time.UTC); err == nil {
				t.Errorf("ParseInterval(%q) expected error, got nil", tt.phrase)
			}
		})
	}
}
