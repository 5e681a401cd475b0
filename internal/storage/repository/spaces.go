package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// CreateSpace сохраняет составной аккаунт.
func (s *Storage) CreateSpace(ctx context.Context, username string, space models.MultiServiceSpace) error {
	const op = "storage.CreateSpace"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := json.Marshal(space.FeaturesServices)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `INSERT INTO multi_service_spaces (local_id, user_uid, name, image, enabled, features)
			  VALUES ($1, (SELECT uid FROM users WHERE username = $2), $3, $4, $5, $6)`
	if _, err := s.DB.ExecContext(ctx, query,
		space.AccountLocalID, username, space.Name, space.Image, space.Enabled, features); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSpace возвращает составной аккаунт по локальному идентификатору.
// Отсутствие — nil без ошибки.
func (s *Storage) GetSpace(ctx context.Context, localID string) (*models.MultiServiceSpace, error) {
	const op = "storage.GetSpace"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT local_id, name, image, enabled, features
			  FROM multi_service_spaces
			  WHERE local_id = $1`
	space := &models.MultiServiceSpace{}
	var features []byte
	err := s.DB.QueryRowContext(ctx, query, localID).Scan(
		&space.AccountLocalID, &space.Name, &space.Image, &space.Enabled, &features)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(features, &space.FeaturesServices); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return space, nil
}

// ListSpaces возвращает все составные аккаунты пользователя.
func (s *Storage) ListSpaces(ctx context.Context, username string) ([]*models.MultiServiceSpace, error) {
	const op = "storage.ListSpaces"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT local_id, name, image, enabled, features
			  FROM multi_service_spaces
			  WHERE user_uid = (SELECT uid FROM users WHERE username = $1)
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.MultiServiceSpace
	for rows.Next() {
		space := &models.MultiServiceSpace{}
		var features []byte
		if err := rows.Scan(&space.AccountLocalID, &space.Name, &space.Image,
			&space.Enabled, &features); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(features, &space.FeaturesServices); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, space)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSpace заменяет имя, изображение, включённость и привязки фич.
func (s *Storage) UpdateSpace(ctx context.Context, space models.MultiServiceSpace) (int, error) {
	const op = "storage.UpdateSpace"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	features, err := json.Marshal(space.FeaturesServices)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE multi_service_spaces
			  SET name = $1, image = $2, enabled = $3, features = $4, updated_at = NOW()
			  WHERE local_id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		space.Name, space.Image, space.Enabled, features, space.AccountLocalID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}

// RemoveSpace удаляет составной аккаунт и возвращает количество удалённых строк.
func (s *Storage) RemoveSpace(ctx context.Context, localID string) (int, error) {
	const op = "storage.RemoveSpace"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM multi_service_spaces WHERE local_id = $1`, localID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}
