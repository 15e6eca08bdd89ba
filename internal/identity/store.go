package identity

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kintai-backend/internal/platform/db"
)

type ProfileStore interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]Profile, int64, error)
	UpdateProfile(ctx context.Context, userID, name, department string) (int64, error)
	NextEmployeeCode(ctx context.Context) (string, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
	GrantRole(ctx context.Context, userID, role, grantedBy string) error
	ListRoles(ctx context.Context, userID string) ([]string, error)
}

type Store struct{ db db.DBTX }

// NewStore: authz.RoleChecker としても使う
func NewStore(q db.DBTX) *Store { return &Store{db: q} }

// ===== profiles =====

func (s *Store) CreateProfile(ctx context.Context, p *Profile) error {
	const q = `
	INSERT INTO profiles (user_id, name, email, employee_code, department, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, NOW(6), NOW(6))`
	_, err := s.db.ExecContext(ctx, q, p.UserID, p.Name, p.Email, p.EmployeeCode, p.Department)
	return err
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	const q = `
	SELECT user_id, name, email, employee_code, department, created_at, updated_at
	FROM profiles
	WHERE user_id = ?
	LIMIT 1`
	var p Profile
	err := s.db.QueryRowContext(ctx, q, userID).Scan(
		&p.UserID, &p.Name, &p.Email, &p.EmployeeCode, &p.Department, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context, limit, offset int) ([]Profile, int64, error) {
	var buf bytes.Buffer
	buf.WriteString(`
	SELECT user_id, name, email, employee_code, department, created_at, updated_at
	FROM profiles
	ORDER BY employee_code ASC`)
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	rows, err := s.db.QueryContext(ctx, buf.String())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.UserID, &p.Name, &p.Email, &p.EmployeeCode, &p.Department,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateProfile: employee_code は対象外（不変）
func (s *Store) UpdateProfile(ctx context.Context, userID, name, department string) (int64, error) {
	const q = `
	UPDATE profiles
	SET name = ?, department = ?, updated_at = NOW(6)
	WHERE user_id = ?`
	res, err := s.db.ExecContext(ctx, q, name, department, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// NextEmployeeCode: 連番の最大+1。登録Tx内で呼ぶこと（FOR UPDATEで直列化）。
func (s *Store) NextEmployeeCode(ctx context.Context) (string, error) {
	const q = `
	SELECT COALESCE(MAX(CAST(SUBSTRING(employee_code, ?) AS UNSIGNED)), 0) + 1
	FROM profiles
	FOR UPDATE`
	var n int64
	if err := s.db.QueryRowContext(ctx, q, len(EmployeeCodePrefix)+1).Scan(&n); err != nil {
		return "", err
	}
	return formatEmployeeCode(n), nil
}

func formatEmployeeCode(n int64) string {
	return fmt.Sprintf("%s%0*d", EmployeeCodePrefix, EmployeeCodeWidth, n)
}

// ===== user_roles =====

func (s *Store) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
	SELECT 1 FROM user_roles
	WHERE user_id = ? AND role = ? LIMIT 1`, userID, role,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GrantRole: 追記のみ。UNIQUE(user_id, role) 違反はそのまま返す（Service側で1062判定）
func (s *Store) GrantRole(ctx context.Context, userID, role, grantedBy string) error {
	const q = `
	INSERT INTO user_roles (user_id, role, granted_by, created_at)
	VALUES (?, ?, ?, NOW(6))`
	_, err := s.db.ExecContext(ctx, q, userID, role, grantedBy)
	return err
}

func (s *Store) ListRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT role FROM user_roles
	WHERE user_id = ?
	ORDER BY role`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
