package auth

import (
	"context"
	"database/sql"
	"errors"

	"kintai-backend/internal/platform/db"
)

type Account struct {
	UserID       string
	Email        string
	PasswordHash string
	IsDisabled   bool
	CreatedAt    string
}

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, userID string) (*Account, error)
	Create(ctx context.Context, a *Account) error
}

type Store struct{ db db.DBTX }

// NewStore: *sql.DB でも *sql.Tx でも動く（登録フローはTx内で使う）
func NewStore(q db.DBTX) AccountStore {
	return &Store{db: q}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT user_id, email, password_hash, is_disabled, created_at
FROM auth_accounts
WHERE email = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) GetByID(ctx context.Context, userID string) (*Account, error) {
	const q = `
SELECT user_id, email, password_hash, is_disabled, created_at
FROM auth_accounts
WHERE user_id = ?
LIMIT 1
`
	return s.scanOne(s.db.QueryRowContext(ctx, q, userID))
}

func (s *Store) scanOne(row *sql.Row) (*Account, error) {
	var a Account
	var isDisabledInt int
	err := row.Scan(
		&a.UserID,
		&a.Email,
		&a.PasswordHash,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isDisabledInt != 0 {
		a.IsDisabled = true
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO auth_accounts (user_id, email, password_hash, is_disabled, created_at)
VALUES (?, ?, ?, 0, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q, a.UserID, a.Email, a.PasswordHash)
	return err
}
