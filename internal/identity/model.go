package identity

import "time"

// 社員番号は固定プレフィックス+ゼロ詰め連番。一度割り当てたら変更不可。
const (
	EmployeeCodePrefix = "EMP-"
	EmployeeCodeWidth  = 4
)

type Profile struct {
	UserID       string
	Name         string
	Email        string
	EmployeeCode string
	Department   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Profile) toDTO() ProfileResponse {
	return ProfileResponse{
		UserID:       p.UserID,
		Name:         p.Name,
		Email:        p.Email,
		EmployeeCode: p.EmployeeCode,
		Department:   p.Department,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
