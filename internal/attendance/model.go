package attendance

import (
	"database/sql"
	"time"
)

// ステータスは打刻時に確定し、あとから権限者が上書きできる
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusHalfDay = "half-day"
)

func validStatus(s string) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay:
		return true
	}
	return false
}

// DB行に対応（スキャン用）
type recordRow struct {
	RecordID       uint64
	UserID         string
	WorkDate       string // DATE → "YYYY-MM-DD"
	CheckInAt      time.Time
	CheckOutAt     sql.NullTime
	Status         string
	TotalHours     sql.NullFloat64
	ModifiedBy     sql.NullString
	ModifiedAt     sql.NullTime
	OriginalStatus sql.NullString
	EditReason     sql.NullString
}

// Service ↔ Store で使うモデル
type Record struct {
	RecordID       uint64
	UserID         string
	WorkDate       string
	CheckInAt      time.Time
	CheckOutAt     *time.Time
	Status         string
	TotalHours     *float64
	ModifiedBy     *string
	ModifiedAt     *time.Time
	OriginalStatus *string
	EditReason     *string
}

func (r recordRow) toModel() Record {
	m := Record{
		RecordID:  r.RecordID,
		UserID:    r.UserID,
		WorkDate:  r.WorkDate,
		CheckInAt: r.CheckInAt.UTC(),
		Status:    r.Status,
	}
	if r.CheckOutAt.Valid {
		t := r.CheckOutAt.Time.UTC()
		m.CheckOutAt = &t
	}
	if r.TotalHours.Valid {
		v := r.TotalHours.Float64
		m.TotalHours = &v
	}
	if r.ModifiedBy.Valid {
		v := r.ModifiedBy.String
		m.ModifiedBy = &v
	}
	if r.ModifiedAt.Valid {
		t := r.ModifiedAt.Time.UTC()
		m.ModifiedAt = &t
	}
	if r.OriginalStatus.Valid {
		v := r.OriginalStatus.String
		m.OriginalStatus = &v
	}
	if r.EditReason.Valid {
		v := r.EditReason.String
		m.EditReason = &v
	}
	return m
}

func (m Record) toDTO() RecordResponse {
	return RecordResponse{
		RecordID:       m.RecordID,
		UserID:         m.UserID,
		WorkDate:       m.WorkDate,
		CheckInAt:      m.CheckInAt,
		CheckOutAt:     m.CheckOutAt,
		Status:         m.Status,
		TotalHours:     m.TotalHours,
		ModifiedBy:     m.ModifiedBy,
		ModifiedAt:     m.ModifiedAt,
		OriginalStatus: m.OriginalStatus,
		EditReason:     m.EditReason,
	}
}
