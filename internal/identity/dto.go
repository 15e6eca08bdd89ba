package identity

import "time"

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
	MinPasswordLen   = 8
)

type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	Name       string `json:"name"`
	Department string `json:"department"`
	// 招待リンク経由なら入る。失効・不明トークンは自己申告値にフォールバック
	InviteToken string `json:"invite_token,omitempty"`
}

type ProfileResponse struct {
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	EmployeeCode string    `json:"employee_code"`
	Department   string    `json:"department"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// employee_code と user_id は更新対象外（不変）
type UpdateProfileRequest struct {
	Name       string `json:"name" binding:"required"`
	Department string `json:"department"`
}

type GrantRoleRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

type RolesResponse struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}
