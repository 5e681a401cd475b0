// Package frdate разбирает французские текстовые фразы с датами, которые
// некоторые школьные сервисы отдают вместо машиночитаемых дат в лентах
// посещаемости: "le mercredi 21 février 2024 de 08:10 à 16:10" и
// "du mercredi 27 novembre 2024 à 08:10 au vendredi 06 décembre 2024 à 08:10".
//
// Грамматика намеренно ограничена двумя наблюдаемыми формами "le…" и "du…au…"
// и не расширяется до общего парсера естественного языка.
package frdate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var months = map[string]time.Month{
	"janvier":   time.January,
	"fevrier":   time.February,
	"février":   time.February,
	"mars":      time.March,
	"avril":     time.April,
	"mai":       time.May,
	"juin":      time.June,
	"juillet":   time.July,
	"aout":      time.August,
	"août":      time.August,
	"septembre": time.September,
	"octobre":   time.October,
	"novembre":  time.November,
	"decembre":  time.December,
	"décembre":  time.December,
}

// Interval — результат разбора фразы: начало и конец интервала.
type Interval struct {
	Start time.Time
	End   time.Time
}

// ParseInterval разбирает фразу вида "le … [de HH:MM à HH:MM]" либо
// "du … [à HH:MM] au … [à HH:MM]" в интервал времени в зоне loc.
// Для фразы без времени начало — 00:00, конец — 23:59 соответствующего дня.
func ParseInterval(phrase string, loc *time.Location) (Interval, error) {
	const op = "frdate.ParseInterval"

	s := strings.ToLower(strings.TrimSpace(phrase))
	switch {
	case strings.HasPrefix(s, "du "):
		return parseRange(s[len("du "):], loc, op)
	case strings.HasPrefix(s, "le "):
		return parseSingleDay(s[len("le "):], loc, op)
	default:
		return Interval{}, fmt.Errorf("%s: unsupported phrase form: %q", op, phrase)
	}
}

// parseSingleDay разбирает хвост формы "le …": одна дата с необязательным
// временным диапазоном "de HH:MM à HH:MM".
func parseSingleDay(s string, loc *time.Location, op string) (Interval, error) {
	datePart := s
	timePart := ""
	if idx := strings.Index(s, " de "); idx >= 0 && strings.Contains(s[idx:], ":") {
		datePart = s[:idx]
		timePart = s[idx+len(" de "):]
	}

	day, err := parseDate(datePart, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("%s: %w", op, err)
	}

	if timePart == "" {
		return Interval{
			Start: day,
			End:   day.Add(23*time.Hour + 59*time.Minute),
		}, nil
	}

	from, to, found := strings.Cut(timePart, " à ")
	if !found {
		return Interval{}, fmt.Errorf("%s: time range without end: %q", op, timePart)
	}
	start, err := atClock(day, from)
	if err != nil {
		return Interval{}, fmt.Errorf("%s: %w", op, err)
	}
	end, err := atClock(day, to)
	if err != nil {
		return Interval{}, fmt.Errorf("%s: %w", op, err)
	}
	return Interval{Start: start, End: end}, nil
}

// parseRange разбирает хвост формы "du … au …": каждая из сторон — дата
// с необязательным временем "à HH:MM".
func parseRange(s string, loc *time.Location, op string) (Interval, error) {
	fromPart, toPart, found := strings.Cut(s, " au ")
	if !found {
		return Interval{}, fmt.Errorf("%s: range without \"au\": %q", op, s)
	}

	start, err := parseDateWithOptionalClock(fromPart, loc, time.Duration(0))
	if err != nil {
		return Interval{}, fmt.Errorf("%s: %w", op, err)
	}
	end, err := parseDateWithOptionalClock(toPart, loc, 23*time.Hour+59*time.Minute)
	if err != nil {
		return Interval{}, fmt.Errorf("%s: %w", op, err)
	}
	return Interval{Start: start, End: end}, nil
}

// parseDateWithOptionalClock разбирает "дата [à HH:MM]". При отсутствии
// времени к полуночи прибавляется fallback.
func parseDateWithOptionalClock(s string, loc *time.Location, fallback time.Duration) (time.Time, error) {
	datePart := s
	clockPart := ""
	if idx := strings.Index(s, " à "); idx >= 0 && strings.Contains(s[idx:], ":") {
		datePart = s[:idx]
		clockPart = s[idx+len(" à "):]
	}

	day, err := parseDate(datePart, loc)
	if err != nil {
		return time.Time{}, err
	}
	if clockPart == "" {
		return day.Add(fallback), nil
	}
	return atClock(day, clockPart)
}

// parseDate разбирает "mercredi 21 février 2024" (день недели необязателен)
// в полночь этого дня в зоне loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	fields := strings.Fields(s)
	// День недели отбрасывается: значим только номер дня, месяц и год.
	for len(fields) > 3 {
		fields = fields[1:]
	}
	if len(fields) != 3 {
		return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
	}

	day, err := strconv.Atoi(strings.TrimLeft(fields[0], "0"))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day of month: %q", fields[0])
	}
	month, ok := months[fields[1]]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month name: %q", fields[1])
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year < 1900 {
		return time.Time{}, fmt.Errorf("invalid year: %q", fields[2])
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc), nil
}

// atClock прибавляет к полуночи day время "HH:MM".
func atClock(day time.Time, clock string) (time.Time, error) {
	hh, mm, found := strings.Cut(strings.TrimSpace(clock), ":")
	if !found {
		return time.Time{}, fmt.Errorf("invalid clock value: %q", clock)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return time.Time{}, fmt.Errorf("invalid hours: %q", clock)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return time.Time{}, fmt.Errorf("invalid minutes: %q", clock)
	}
	return day.Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute), nil
}
