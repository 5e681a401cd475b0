package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/school-aggregator/internal/models"
)

// CreateAccount сохраняет привязанный аккаунт сервиса.
func (s *Storage) CreateAccount(ctx context.Context, username string, account models.Account) error {
	const op = "storage.CreateAccount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	auth, err := json.Marshal(account.Auth)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	personal, err := json.Marshal(account.Personal)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	serviceData, err := json.Marshal(account.ServiceData)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO accounts (local_id, user_uid, service, is_external, name,
			      school_name, auth, personalization, service_data)
			  VALUES ($1, (SELECT uid FROM users WHERE username = $2),
			      $3, $4, $5, $6, $7, $8, $9)`
	if _, err := s.DB.ExecContext(ctx, query,
		account.LocalID, username, string(account.Service), account.IsExternal,
		account.Name, account.SchoolName, auth, personal, serviceData); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetAccount возвращает аккаунт по его локальному идентификатору.
// Отсутствие аккаунта — nil без ошибки.
func (s *Storage) GetAccount(ctx context.Context, localID string) (*models.Account, error) {
	const op = "storage.GetAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT local_id, service, is_external, name, school_name,
			      auth, personalization, service_data
			  FROM accounts
			  WHERE local_id = $1`
	row := s.DB.QueryRowContext(ctx, query, localID)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return account, nil
}

// ListAccounts возвращает все аккаунты пользователя.
func (s *Storage) ListAccounts(ctx context.Context, username string) ([]*models.Account, error) {
	const op = "storage.ListAccounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT local_id, service, is_external, name, school_name,
			      auth, personalization, service_data
			  FROM accounts
			  WHERE user_uid = (SELECT uid FROM users WHERE username = $1)
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateAccountAuth заменяет сессионные данные аккаунта после Reload.
func (s *Storage) UpdateAccountAuth(ctx context.Context, localID string, auth models.Authentication) error {
	const op = "storage.UpdateAccountAuth"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	raw, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE accounts SET auth = $1, updated_at = NOW() WHERE local_id = $2`
	if _, err := s.DB.ExecContext(ctx, query, raw, localID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateAccountPersonalization заменяет персонализацию аккаунта.
func (s *Storage) UpdateAccountPersonalization(ctx context.Context, localID string, personal models.Personalization) error {
	const op = "storage.UpdateAccountPersonalization"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	raw, err := json.Marshal(personal)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE accounts SET personalization = $1, updated_at = NOW() WHERE local_id = $2`
	if _, err := s.DB.ExecContext(ctx, query, raw, localID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveAccount удаляет аккаунт и возвращает количество удалённых строк.
func (s *Storage) RemoveAccount(ctx context.Context, localID string) (int, error) {
	const op = "storage.RemoveAccount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM accounts WHERE local_id = $1`, localID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{}
	var service string
	var auth, personal, serviceData []byte
	if err := row.Scan(&account.LocalID, &service, &account.IsExternal,
		&account.Name, &account.SchoolName, &auth, &personal, &serviceData); err != nil {
		return nil, err
	}
	account.Service = models.Service(service)
	if err := json.Unmarshal(auth, &account.Auth); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(personal, &account.Personal); err != nil {
		return nil, err
	}
	if len(serviceData) > 0 {
		if err := json.Unmarshal(serviceData, &account.ServiceData); err != nil {
			return nil, err
		}
	}
	return account, nil
}
