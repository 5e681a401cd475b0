// Package spaces содержит бизнес-логику составных аккаунтов: создание,
// настройку привязок фич и синхронизацию кеш-хранилища с базой данных.
package spaces

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
	"github.com/magabrotheeeer/school-aggregator/internal/multiservice"
	"github.com/magabrotheeeer/school-aggregator/internal/stores"
)

// ErrSpaceNotFound возвращается при обращении к несуществующему составному аккаунту.
var ErrSpaceNotFound = errors.New("multi-service space not found")

// Repository описывает контракт хранилища составных аккаунтов.
type Repository interface {
	CreateSpace(ctx context.Context, username string, space models.MultiServiceSpace) error
	ListSpaces(ctx context.Context, username string) ([]*models.MultiServiceSpace, error)
	UpdateSpace(ctx context.Context, space models.MultiServiceSpace) (int, error)
	RemoveSpace(ctx context.Context, localID string) (int, error)
}

// Service отвечает за составные аккаунты. Кеш-хранилище обслуживает
// диспетчер, база данных переживает перезапуски; сервис держит их в согласии.
type Service struct {
	repo   Repository
	store  *stores.MultiServiceStore
	router *multiservice.Router
}

// New создает новый экземпляр Service.
func New(repo Repository, store *stores.MultiServiceStore, router *multiservice.Router) *Service {
	return &Service{repo: repo, store: store, router: router}
}

// Create регистрирует составной аккаунт и возвращает его LocalID.
func (s *Service) Create(ctx context.Context, username, name, image string) (string, error) {
	const op = "spaces.Create"

	space := models.MultiServiceSpace{
		AccountLocalID:   uuid.NewString(),
		Name:             name,
		Image:            image,
		Enabled:          true,
		FeaturesServices: make(map[models.Feature]string),
	}
	if err := s.repo.CreateSpace(ctx, username, space); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.Create(space); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return space.AccountLocalID, nil
}

// List возвращает составные аккаунты пользователя.
func (s *Service) List(ctx context.Context, username string) ([]*models.MultiServiceSpace, error) {
	return s.repo.ListSpaces(ctx, username)
}

// SetFeature привязывает фичу составного аккаунта к реальному аккаунту.
// Составной аккаунт в роли цели отклоняется маршрутизатором.
func (s *Service) SetFeature(ctx context.Context, spaceLocalID string, feature models.Feature, accountLocalID string) error {
	const op = "spaces.SetFeature"

	if err := s.router.SetFeatureAccount(spaceLocalID, feature, accountLocalID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.persist(ctx, op, spaceLocalID)
}

// ToggleEnabled переключает включённость составного аккаунта.
func (s *Service) ToggleEnabled(ctx context.Context, spaceLocalID string) error {
	const op = "spaces.ToggleEnabled"

	if !s.store.ToggleEnabledState(spaceLocalID) {
		return ErrSpaceNotFound
	}
	return s.persist(ctx, op, spaceLocalID)
}

// Rename заменяет имя и изображение составного аккаунта.
func (s *Service) Rename(ctx context.Context, spaceLocalID, name, image string) error {
	const op = "spaces.Rename"

	if !s.store.Update(spaceLocalID, name, image) {
		return ErrSpaceNotFound
	}
	return s.persist(ctx, op, spaceLocalID)
}

// Remove удаляет составной аккаунт.
func (s *Service) Remove(ctx context.Context, spaceLocalID string) error {
	const op = "spaces.Remove"

	s.store.Remove(spaceLocalID)
	removed, err := s.repo.RemoveSpace(ctx, spaceLocalID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if removed == 0 {
		return ErrSpaceNotFound
	}
	return nil
}

// Hydrate поднимает составные аккаунты пользователя из базы в кеш-хранилище.
func (s *Service) Hydrate(ctx context.Context, username string) error {
	const op = "spaces.Hydrate"

	list, err := s.repo.ListSpaces(ctx, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, space := range list {
		if _, exists := s.store.Space(space.AccountLocalID); exists {
			continue
		}
		if err := s.store.Create(*space); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func (s *Service) persist(ctx context.Context, op, spaceLocalID string) error {
	space, ok := s.store.Space(spaceLocalID)
	if !ok {
		return ErrSpaceNotFound
	}
	updated, err := s.repo.UpdateSpace(ctx, space)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if updated == 0 {
		return ErrSpaceNotFound
	}
	return nil
}
