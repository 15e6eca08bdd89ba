package invitation

import "time"

const (
	DefaultExpiryDays = 7
	MaxExpiryDays     = 90
	DefaultPageLimit  = 50
	MaxPageLimit      = 200
)

type CreateInvitationRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required"`
	Department string `json:"department" binding:"required"`
	Role       string `json:"role" binding:"required"`
	// 省略時は7日
	ExpiryDays *int `json:"expiry_days,omitempty"`
}

type InvitationResponse struct {
	InvitationID string     `json:"invitation_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Department   string     `json:"department"`
	Role         string     `json:"role"`
	Token        string     `json:"token"`
	Status       string     `json:"status"`
	InvitedBy    string     `json:"invited_by"`
	ExpiresAt    time.Time  `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
}

// 登録画面プリフィル用（トークンは返さない）
type PrefillResponse struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// Redeemed: 登録トランザクション内で消し込んだ招待の内容
type Redeemed struct {
	InvitationID string
	Email        string
	Name         string
	Department   string
	Role         string
}
