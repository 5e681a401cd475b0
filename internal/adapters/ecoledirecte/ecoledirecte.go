// Package ecoledirecte реализует адаптер сервиса EcoleDirecte.
//
// EcoleDirecte отдаёт посещаемость одной общей лентой, где тип события задан
// дискриминантом kind, а даты — французскими текстовыми фразами. Адаптер
// раскладывает ленту на опоздания, отсутствия и наказания и разбирает фразы
// через lib/frdate; эти причуды не выходят за пределы пакета.
package ecoledirecte

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/lib/frdate"
	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// Дискриминанты событий в ленте посещаемости EcoleDirecte.
const (
	kindDelay      = "Retard"
	kindAbsence    = "Absence"
	kindPunishment = "Punition"
)

// Adapter — адаптер EcoleDirecte.
type Adapter struct {
	client *Client
	loc    *time.Location
}

// New создает адаптер EcoleDirecte. Даты во фразах EcoleDirecte всегда
// во французском школьном времени.
func New(baseURL string) *Adapter {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		loc = time.UTC
	}
	return &Adapter{client: NewClient(baseURL), loc: loc}
}

// Service возвращает тег сервиса.
func (a *Adapter) Service() models.Service {
	return models.ServiceEcoleDirecte
}

func checkSession(account models.Account) error {
	if account.Auth.Token == "" || account.Auth.Username == "" {
		return &models.UnauthenticatedError{Service: models.ServiceEcoleDirecte}
	}
	return nil
}

// News возвращает новости заведения.
func (a *Adapter) News(ctx context.Context, account models.Account) ([]models.Information, error) {
	const op = "ecoledirecte.News"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	raw, err := a.client.News(ctx, account.Auth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Information, 0, len(raw))
	for _, n := range raw {
		attachments := make([]models.Attachment, 0, len(n.Files))
		for _, f := range n.Files {
			attachments = append(attachments, models.Attachment{Type: "file", Name: f.Name, URL: f.URL})
		}
		out = append(out, models.Information{
			ID:          n.ID,
			Title:       n.Subject,
			Date:        n.Date.UnixMilli(),
			Author:      n.From,
			Content:     n.Content,
			Read:        n.Read,
			Attachments: attachments,
		})
	}
	return out, nil
}

// SetNewsRead помечает сообщение прочитанным на стороне EcoleDirecte.
func (a *Adapter) SetNewsRead(ctx context.Context, account models.Account, informationID string, read bool) error {
	const op = "ecoledirecte.SetNewsRead"

	if err := checkSession(account); err != nil {
		return err
	}
	if err := a.client.MarkNewsRead(ctx, account.Auth, informationID, read); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Attendance запрашивает общую ленту событий и раскладывает её по kind.
// Период EcoleDirecte не поддерживает: лента всегда целиком за учебный год.
func (a *Adapter) Attendance(ctx context.Context, account models.Account, _ string) (models.Attendance, error) {
	const op = "ecoledirecte.Attendance"

	if err := checkSession(account); err != nil {
		return models.Attendance{}, err
	}
	feed, err := a.client.AttendanceFeed(ctx, account.Auth)
	if err != nil {
		return models.Attendance{}, fmt.Errorf("%s: %w", op, err)
	}

	att := models.Attendance{
		Delays:       []models.Delay{},
		Absences:     []models.Absence{},
		Punishments:  []models.Punishment{},
		Observations: []models.Observation{},
	}
	for _, item := range feed {
		interval, err := frdate.ParseInterval(item.DisplayDate, a.loc)
		if err != nil {
			return models.Attendance{}, fmt.Errorf("%s: event %s: %w", op, item.ID, err)
		}

		switch item.Kind {
		case kindDelay:
			att.Delays = append(att.Delays, models.Delay{
				ID:            item.ID,
				Timestamp:     interval.Start.UnixMilli(),
				Duration:      int(interval.End.Sub(interval.Start).Minutes()),
				Justified:     item.Justified,
				Justification: item.Comment,
				Reasons:       reasons(item.Motive),
			})
		case kindAbsence:
			att.Absences = append(att.Absences, models.Absence{
				ID:                    item.ID,
				FromTimestamp:         interval.Start.UnixMilli(),
				ToTimestamp:           interval.End.UnixMilli(),
				Justified:             item.Justified,
				Hours:                 item.Hours,
				AdministrativelyFixed: item.Closed,
				Reasons:               reasons(item.Motive),
			})
		case kindPunishment:
			att.Punishments = append(att.Punishments, models.Punishment{
				ID:        item.ID,
				Timestamp: interval.Start.UnixMilli(),
				Duration:  int(interval.End.Sub(interval.Start).Minutes()),
				GivenBy:   item.By,
				Nature:    item.Nature,
				Reason:    models.PunishmentReason{Text: item.Motive, Circumstances: item.Comment},
			})
		default:
			// Неизвестные виды событий лента может добавлять без предупреждения,
			// они не должны ронять разбор остальных.
			continue
		}
	}
	return att, nil
}

// ProfilePicture возвращает аватар ученика.
func (a *Adapter) ProfilePicture(ctx context.Context, account models.Account) (string, error) {
	const op = "ecoledirecte.ProfilePicture"

	if err := checkSession(account); err != nil {
		return "", err
	}
	picture, err := a.client.ProfilePicture(ctx, account.Auth)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return picture, nil
}

// Reload повторно авторизуется и возвращает новый набор сессионных данных.
func (a *Adapter) Reload(ctx context.Context, account models.Account) (models.Authentication, error) {
	const op = "ecoledirecte.Reload"

	if account.Auth.Username == "" || account.Auth.Password == "" {
		return models.Authentication{}, &models.UnauthenticatedError{Service: models.ServiceEcoleDirecte}
	}
	token, err := a.client.Authenticate(ctx, account.Auth.Username, account.Auth.Password)
	if err != nil {
		return models.Authentication{}, fmt.Errorf("%s: %w", op, err)
	}

	auth := account.Auth
	auth.Token = token
	return auth, nil
}

func reasons(motive string) []string {
	if motive == "" {
		return nil
	}
	return []string{motive}
}
