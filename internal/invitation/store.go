package invitation

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kintai-backend/internal/platform/db"
)

type InviteStore interface {
	Insert(ctx context.Context, inv *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	MarkAccepted(ctx context.Context, invitationID string, at time.Time) (int64, error)
	List(ctx context.Context, limit, offset int) ([]Invitation, int64, error)
}

type Store struct{ db db.DBTX }

func NewStore(q db.DBTX) InviteStore { return &Store{db: q} }

const selectCols = `
	invitation_id, email, name, department, role, token, status,
	invited_by, expires_at, created_at, accepted_at`

func (s *Store) Insert(ctx context.Context, inv *Invitation) error {
	const q = `
	INSERT INTO invitations
	(invitation_id, email, name, department, role, token, status, invited_by, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(6))`
	_, err := s.db.ExecContext(ctx, q,
		inv.InvitationID, inv.Email, inv.Name, inv.Department, inv.Role,
		inv.Token, inv.Status, inv.InvitedBy, inv.ExpiresAt)
	return err
}

func (s *Store) GetByToken(ctx context.Context, token string) (*Invitation, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT `+selectCols+`
	FROM invitations
	WHERE token = ?
	LIMIT 1`, token)

	var r invitationRow
	err := row.Scan(&r.InvitationID, &r.Email, &r.Name, &r.Department, &r.Role,
		&r.Token, &r.Status, &r.InvitedBy, &r.ExpiresAt, &r.CreatedAt, &r.AcceptedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := r.toModel()
	return &m, nil
}

// MarkAccepted: pending のものだけ消し込む（競合した二重消込はここで0件になる）
func (s *Store) MarkAccepted(ctx context.Context, invitationID string, at time.Time) (int64, error) {
	const q = `
	UPDATE invitations
	SET status = 'accepted', accepted_at = ?
	WHERE invitation_id = ? AND status = 'pending'`
	res, err := s.db.ExecContext(ctx, q, at, invitationID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Invitation, int64, error) {
	var buf bytes.Buffer
	buf.WriteString(`
	SELECT ` + selectCols + `
	FROM invitations
	ORDER BY created_at DESC, invitation_id DESC`)
	buf.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	rows, err := s.db.QueryContext(ctx, buf.String())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invitation
	for rows.Next() {
		var r invitationRow
		if err := rows.Scan(&r.InvitationID, &r.Email, &r.Name, &r.Department, &r.Role,
			&r.Token, &r.Status, &r.InvitedBy, &r.ExpiresAt, &r.CreatedAt, &r.AcceptedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
