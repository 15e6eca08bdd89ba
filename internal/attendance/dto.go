package attendance

import "time"

const (
	SortWorkDateDesc = "work_date_desc"
	SortWorkDateAsc  = "work_date_asc"
	SortCheckInDesc  = "check_in_desc"
	SortCheckInAsc   = "check_in_asc"
	DefaultPageLimit = 50
	MaxPageLimit     = 200
	DefaultSort      = SortWorkDateDesc
	DateLayout       = "2006-01-02"

	// 上書き理由の最低文字数（監査用の自由記述）
	MinEditReasonLen = 10
)

// PUT /attendances/:id（権限者のみ）
type OverrideRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type RecordResponse struct {
	RecordID       uint64     `json:"record_id"`
	UserID         string     `json:"user_id"`
	WorkDate       string     `json:"work_date"` // YYYY-MM-DD
	CheckInAt      time.Time  `json:"check_in_at"`
	CheckOutAt     *time.Time `json:"check_out_at,omitempty"`
	Status         string     `json:"status"`
	TotalHours     *float64   `json:"total_hours,omitempty"`
	ModifiedBy     *string    `json:"modified_by,omitempty"`
	ModifiedAt     *time.Time `json:"modified_at,omitempty"`
	OriginalStatus *string    `json:"original_status,omitempty"`
	EditReason     *string    `json:"edit_reason,omitempty"`
}

type ListQuery struct {
	UserID *string
	On     *string
	From   *string
	To     *string
	Status *string
	Limit  int
	Offset int
	Sort   string
}
