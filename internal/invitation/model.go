package invitation

import (
	"database/sql"
	"time"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusExpired  = "expired"
)

type Invitation struct {
	InvitationID string
	Email        string
	Name         string
	Department   string
	Role         string
	Token        string
	Status       string
	InvitedBy    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	AcceptedAt   *time.Time
}

// EffectiveStatus: 失効はバックグラウンドで書き換えず、読み取り時に導出する
func (i Invitation) EffectiveStatus(now time.Time) string {
	if i.Status == StatusPending && now.After(i.ExpiresAt) {
		return StatusExpired
	}
	return i.Status
}

// usable: 登録プリフィルに使えるか（pending かつ未失効）
func usable(i *Invitation, now time.Time) bool {
	return i != nil && i.Status == StatusPending && !now.After(i.ExpiresAt)
}

type invitationRow struct {
	InvitationID string
	Email        string
	Name         string
	Department   string
	Role         string
	Token        string
	Status       string
	InvitedBy    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	AcceptedAt   sql.NullTime
}

func (r invitationRow) toModel() Invitation {
	m := Invitation{
		InvitationID: r.InvitationID,
		Email:        r.Email,
		Name:         r.Name,
		Department:   r.Department,
		Role:         r.Role,
		Token:        r.Token,
		Status:       r.Status,
		InvitedBy:    r.InvitedBy,
		ExpiresAt:    r.ExpiresAt.UTC(),
		CreatedAt:    r.CreatedAt.UTC(),
	}
	if r.AcceptedAt.Valid {
		t := r.AcceptedAt.Time.UTC()
		m.AcceptedAt = &t
	}
	return m
}

func (m Invitation) toDTO(now time.Time) InvitationResponse {
	return InvitationResponse{
		InvitationID: m.InvitationID,
		Email:        m.Email,
		Name:         m.Name,
		Department:   m.Department,
		Role:         m.Role,
		Token:        m.Token,
		Status:       m.EffectiveStatus(now),
		InvitedBy:    m.InvitedBy,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
		AcceptedAt:   m.AcceptedAt,
	}
}
