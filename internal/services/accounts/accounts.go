// Package accounts содержит бизнес-логику привязки аккаунтов сервисов
// к пользователю приложения.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// ErrAccountNotFound возвращается при обращении к несуществующему аккаунту.
var ErrAccountNotFound = errors.New("account not found")

// Repository описывает контракт хранилища аккаунтов.
type Repository interface {
	CreateAccount(ctx context.Context, username string, account models.Account) error
	GetAccount(ctx context.Context, localID string) (*models.Account, error)
	ListAccounts(ctx context.Context, username string) ([]*models.Account, error)
	UpdateAccountAuth(ctx context.Context, localID string, auth models.Authentication) error
	RemoveAccount(ctx context.Context, localID string) (int, error)
}

// SessionReloader повторно авторизует аккаунт у внешнего сервиса.
type SessionReloader interface {
	Reload(ctx context.Context, account models.Account) (models.Authentication, error)
}

// Service отвечает за привязку, выдачу и отвязку аккаунтов.
type Service struct {
	repo     Repository
	reloader SessionReloader
}

// New создает новый экземпляр Service.
func New(repo Repository, reloader SessionReloader) *Service {
	return &Service{repo: repo, reloader: reloader}
}

// Link привязывает аккаунт сервиса к пользователю и возвращает его LocalID.
// Пустой LocalID заполняется новым UUID.
func (s *Service) Link(ctx context.Context, username string, account models.Account) (string, error) {
	const op = "accounts.Link"

	if account.LocalID == "" {
		account.LocalID = uuid.NewString()
	}
	if err := s.repo.CreateAccount(ctx, username, account); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return account.LocalID, nil
}

// List возвращает все аккаунты пользователя.
func (s *Service) List(ctx context.Context, username string) ([]*models.Account, error) {
	return s.repo.ListAccounts(ctx, username)
}

// Get возвращает аккаунт по его локальному идентификатору.
func (s *Service) Get(ctx context.Context, localID string) (models.Account, error) {
	const op = "accounts.Get"

	account, err := s.repo.GetAccount(ctx, localID)
	if err != nil {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}
	if account == nil {
		return models.Account{}, ErrAccountNotFound
	}
	return *account, nil
}

// Unlink отвязывает аккаунт от пользователя.
func (s *Service) Unlink(ctx context.Context, localID string) error {
	const op = "accounts.Unlink"

	removed, err := s.repo.RemoveAccount(ctx, localID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if removed == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// RefreshSession повторно авторизует аккаунт и сохраняет свежие сессионные
// данные. Старые данные остаются в силе, если сервис отказал.
func (s *Service) RefreshSession(ctx context.Context, localID string) (models.Authentication, error) {
	const op = "accounts.RefreshSession"

	account, err := s.Get(ctx, localID)
	if err != nil {
		return models.Authentication{}, err
	}
	auth, err := s.reloader.Reload(ctx, account)
	if err != nil {
		return models.Authentication{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateAccountAuth(ctx, localID, auth); err != nil {
		return models.Authentication{}, fmt.Errorf("%s: %w", op, err)
	}
	return auth, nil
}

// AccountByLocalID реализует multiservice.AccountProvider поверх хранилища.
func (s *Service) AccountByLocalID(localID string) (models.Account, bool) {
	account, err := s.Get(context.Background(), localID)
	if err != nil {
		return models.Account{}, false
	}
	return account, true
}
