package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"kintai-backend/internal/platform/db"
)

type SettingStore interface {
	GetRaw(ctx context.Context, key string) (json.RawMessage, error)
	Upsert(ctx context.Context, key string, value json.RawMessage, updatedBy string) error
}

type Store struct{ db db.DBTX }

func NewStore(q db.DBTX) SettingStore { return &Store{db: q} }

// GetRaw: 行が無ければ (nil, nil)
func (s *Store) GetRaw(ctx context.Context, key string) (json.RawMessage, error) {
	const q = `
SELECT setting_value
FROM app_settings
WHERE setting_key = ?
LIMIT 1
`
	var raw []byte
	err := s.db.QueryRowContext(ctx, q, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *Store) Upsert(ctx context.Context, key string, value json.RawMessage, updatedBy string) error {
	const q = `
INSERT INTO app_settings (setting_key, setting_value, updated_by, updated_at)
VALUES (?, ?, ?, NOW(6))
ON DUPLICATE KEY UPDATE
setting_value = VALUES(setting_value),
updated_by    = VALUES(updated_by),
updated_at    = VALUES(updated_at)`
	_, err := s.db.ExecContext(ctx, q, key, []byte(value), updatedBy)
	return err
}
