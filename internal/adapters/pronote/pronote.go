// Package pronote реализует адаптер сервиса Pronote: клиент к API инстанса
// учебного заведения и перевод его ответов в общие доменные модели.
// Адрес инстанса у каждого заведения свой и хранится в Authentication аккаунта.
package pronote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// tabEvaluations — вкладка Pronote, без которой у аккаунта нет страницы оценок
// компетенций. Список доступных вкладок кешируется в ServiceData при входе.
const tabEvaluations = "evaluations"

// Adapter — адаптер Pronote.
type Adapter struct {
	client *Client
}

// New создает адаптер Pronote.
func New() *Adapter {
	return &Adapter{client: NewClient()}
}

// Service возвращает тег сервиса.
func (a *Adapter) Service() models.Service {
	return models.ServicePronote
}

// checkSession проверяет наличие сессионных данных до любого сетевого вызова.
func checkSession(account models.Account) error {
	if account.Auth.InstanceURL == "" || account.Auth.Token == "" {
		return &models.UnauthenticatedError{Service: models.ServicePronote}
	}
	return nil
}

// EvaluationPeriods возвращает периоды вкладки оценок. Отсутствие вкладки —
// явная ошибка: без неё фича бессмысленна.
func (a *Adapter) EvaluationPeriods(ctx context.Context, account models.Account) ([]models.Period, error) {
	const op = "pronote.EvaluationPeriods"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	if !hasTab(account, tabEvaluations) {
		return nil, fmt.Errorf("%s: evaluations tab is not available for this account", op)
	}

	raw, err := a.client.EvaluationPeriods(ctx, account.Auth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Period, 0, len(raw))
	for _, p := range raw {
		out = append(out, models.Period{
			Name:           p.Name,
			StartTimestamp: p.Start.UnixMilli(),
			EndTimestamp:   p.End.UnixMilli(),
		})
	}
	return out, nil
}

// Evaluations возвращает оценки компетенций за период.
func (a *Adapter) Evaluations(ctx context.Context, account models.Account, periodName string) ([]models.Evaluation, error) {
	const op = "pronote.Evaluations"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	if !hasTab(account, tabEvaluations) {
		return nil, fmt.Errorf("%s: evaluations tab is not available for this account", op)
	}

	raw, err := a.client.Evaluations(ctx, account.Auth, periodName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Evaluation, 0, len(raw))
	for _, e := range raw {
		skills := make([]models.Skill, 0, len(e.Skills))
		for _, s := range e.Skills {
			skills = append(skills, models.Skill{
				Coefficient: s.Coefficient,
				Level:       s.Level,
				DomainName:  s.Domain,
				ItemName:    s.Item,
			})
		}
		out = append(out, models.Evaluation{
			ID:          e.ID,
			Name:        e.Name,
			SubjectID:   e.Subject.ID,
			SubjectName: e.Subject.Name,
			Description: e.Description,
			Timestamp:   e.Date.UnixMilli(),
			Coefficient: e.Coefficient,
			Levels:      e.Levels,
			Skills:      skills,
			Teacher:     e.Teacher,
		})
	}
	return out, nil
}

// News возвращает новости заведения.
func (a *Adapter) News(ctx context.Context, account models.Account) ([]models.Information, error) {
	const op = "pronote.News"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	raw, err := a.client.News(ctx, account.Auth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Information, 0, len(raw))
	for _, n := range raw {
		attachments := make([]models.Attachment, 0, len(n.Attachments))
		for _, att := range n.Attachments {
			attachments = append(attachments, models.Attachment{Type: att.Kind, Name: att.Name, URL: att.URL})
		}
		out = append(out, models.Information{
			ID:          n.ID,
			Title:       n.Title,
			Date:        n.Date.UnixMilli(),
			Author:      n.Author,
			Category:    n.Category,
			Content:     n.Content,
			Read:        n.Read,
			Attachments: attachments,
		})
	}
	return out, nil
}

// SetNewsRead помечает новость прочитанной на стороне Pronote.
func (a *Adapter) SetNewsRead(ctx context.Context, account models.Account, informationID string, read bool) error {
	const op = "pronote.SetNewsRead"

	if err := checkSession(account); err != nil {
		return err
	}
	if err := a.client.MarkNewsRead(ctx, account.Auth, informationID, read); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Attendance возвращает события посещаемости за период.
func (a *Adapter) Attendance(ctx context.Context, account models.Account, periodName string) (models.Attendance, error) {
	const op = "pronote.Attendance"

	if err := checkSession(account); err != nil {
		return models.Attendance{}, err
	}
	raw, err := a.client.Attendance(ctx, account.Auth, periodName)
	if err != nil {
		return models.Attendance{}, fmt.Errorf("%s: %w", op, err)
	}

	att := models.Attendance{
		Delays:       make([]models.Delay, 0, len(raw.Delays)),
		Absences:     make([]models.Absence, 0, len(raw.Absences)),
		Punishments:  make([]models.Punishment, 0, len(raw.Punishments)),
		Observations: make([]models.Observation, 0, len(raw.Observations)),
	}
	for _, d := range raw.Delays {
		att.Delays = append(att.Delays, models.Delay{
			ID:            d.ID,
			Timestamp:     d.Date.UnixMilli(),
			Duration:      d.Minutes,
			Justified:     d.Justified,
			Justification: d.Justification,
			Reasons:       d.Reasons,
		})
	}
	for _, ab := range raw.Absences {
		att.Absences = append(att.Absences, models.Absence{
			ID:                    ab.ID,
			FromTimestamp:         ab.From.UnixMilli(),
			ToTimestamp:           ab.To.UnixMilli(),
			Justified:             ab.Justified,
			Hours:                 ab.Hours,
			AdministrativelyFixed: ab.AdministrativelyFixed,
			Reasons:               ab.Reasons,
		})
	}
	for _, p := range raw.Punishments {
		att.Punishments = append(att.Punishments, models.Punishment{
			ID:           p.ID,
			Duration:     p.Minutes,
			GivenBy:      p.GivenBy,
			Timestamp:    p.Date.UnixMilli(),
			DuringLesson: p.DuringLesson,
			Exclusion:    p.Exclusion,
			Homework:     models.PunishmentHomework{Text: p.HomeworkText, Documents: p.HomeworkDocuments},
			Nature:       p.Nature,
			Reason:       models.PunishmentReason{Circumstances: p.Circumstances, Text: p.ReasonText, Documents: p.ReasonDocuments},
			Schedulable:  p.Schedulable,
		})
	}
	for _, o := range raw.Observations {
		att.Observations = append(att.Observations, models.Observation{
			ID:                   o.ID,
			Timestamp:            o.Date.UnixMilli(),
			SectionName:          o.Section,
			SubjectName:          o.Subject,
			Reasons:              o.Reason,
			ShouldParentsJustify: o.ShouldParentsJustify,
		})
	}
	return att, nil
}

// Menu возвращает меню столовой на день. Пустой ответ — валидный результат.
func (a *Adapter) Menu(ctx context.Context, account models.Account, date time.Time) (models.Menu, error) {
	const op = "pronote.Menu"

	if err := checkSession(account); err != nil {
		return models.Menu{}, err
	}
	menu := models.Menu{Date: midnightUTC(date)}

	raw, err := a.client.Menu(ctx, account.Auth, date)
	if err != nil {
		return models.Menu{}, fmt.Errorf("%s: %w", op, err)
	}
	if raw == nil {
		return menu, nil
	}
	menu.Lunch = convertMeal(raw.Lunch)
	menu.Dinner = convertMeal(raw.Dinner)
	return menu, nil
}

// Homeworks возвращает домашние задания за учебную неделю.
func (a *Adapter) Homeworks(ctx context.Context, account models.Account, epochWeek int) ([]models.Homework, error) {
	const op = "pronote.Homeworks"

	if err := checkSession(account); err != nil {
		return nil, err
	}
	raw, err := a.client.Homeworks(ctx, account.Auth, epochWeek)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Homework, 0, len(raw))
	for _, hw := range raw {
		attachments := make([]models.Attachment, 0, len(hw.Attachments))
		for _, att := range hw.Attachments {
			attachments = append(attachments, models.Attachment{Type: att.Kind, Name: att.Name, URL: att.URL})
		}
		out = append(out, models.Homework{
			ID:          hw.ID,
			SubjectName: hw.Subject,
			Content:     hw.Content,
			Due:         hw.Due.UnixMilli(),
			Done:        hw.Done,
			Attachments: attachments,
		})
	}
	return out, nil
}

// ProfilePicture возвращает аватар ученика.
func (a *Adapter) ProfilePicture(ctx context.Context, account models.Account) (string, error) {
	const op = "pronote.ProfilePicture"

	if err := checkSession(account); err != nil {
		return "", err
	}
	picture, err := a.client.ProfilePicture(ctx, account.Auth)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return picture, nil
}

// Reload повторно авторизуется по сохранённым учётным данным и возвращает
// новый набор сессионных данных с теми же ключами.
func (a *Adapter) Reload(ctx context.Context, account models.Account) (models.Authentication, error) {
	const op = "pronote.Reload"

	if account.Auth.InstanceURL == "" || account.Auth.Username == "" || account.Auth.Password == "" {
		return models.Authentication{}, &models.UnauthenticatedError{Service: models.ServicePronote}
	}
	token, err := a.client.Authenticate(ctx, account.Auth.InstanceURL, account.Auth.Username, account.Auth.Password, account.Auth.DeviceID)
	if err != nil {
		return models.Authentication{}, fmt.Errorf("%s: %w", op, err)
	}

	auth := account.Auth
	auth.Token = token
	return auth, nil
}

func hasTab(account models.Account, tab string) bool {
	for _, t := range strings.Split(account.ServiceData["tabs"], ",") {
		if strings.TrimSpace(t) == tab {
			return true
		}
	}
	return false
}

func convertMeal(raw *mealPayload) *models.Meal {
	if raw == nil {
		return nil
	}
	return &models.Meal{
		Entry:   convertFood(raw.Entry),
		Main:    convertFood(raw.Main),
		Side:    convertFood(raw.Side),
		Cheese:  convertFood(raw.Cheese),
		Dessert: convertFood(raw.Dessert),
		Drink:   convertFood(raw.Drink),
	}
}

func convertFood(raw []foodPayload) []models.FoodItem {
	if len(raw) == 0 {
		return nil
	}
	out := make([]models.FoodItem, 0, len(raw))
	for _, f := range raw {
		out = append(out, models.FoodItem{Name: f.Name, Allergens: f.Allergens, Labels: f.Labels})
	}
	return out
}

func midnightUTC(date time.Time) int64 {
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).UnixMilli()
}
