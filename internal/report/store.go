package report

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"time"

	"kintai-backend/internal/platform/db"
)

// 勤怠×プロフィールの抽出行（CSVの1行に対応）
type Row struct {
	WorkDate     string
	EmployeeCode string
	Name         string
	Department   string
	Status       string
	CheckInAt    time.Time
	CheckOutAt   *time.Time
	TotalHours   *float64
}

type Query struct {
	From   string // YYYY-MM-DD
	To     string // YYYY-MM-DD
	UserID *string
}

type ReportStore interface {
	AttendanceRows(ctx context.Context, q Query) ([]Row, error)
}

type Store struct{ db db.DBTX }

func NewStore(q db.DBTX) ReportStore { return &Store{db: q} }

func (s *Store) AttendanceRows(ctx context.Context, q Query) ([]Row, error) {
	var (
		buf    bytes.Buffer
		args   []any
		wheres []string
	)

	buf.WriteString(`
	SELECT DATE_FORMAT(ar.work_date, '%Y-%m-%d') AS work_date,
	       p.employee_code, p.name, p.department,
	       ar.status, ar.check_in_at, ar.check_out_at, ar.total_hours
	FROM attendance_records ar
	JOIN profiles p ON p.user_id = ar.user_id
	`)
	wheres = append(wheres, "ar.work_date >= ?", "ar.work_date <= ?")
	args = append(args, q.From, q.To)
	if q.UserID != nil && *q.UserID != "" {
		wheres = append(wheres, "ar.user_id = ?")
		args = append(args, *q.UserID)
	}
	buf.WriteString(" WHERE " + strings.Join(wheres, " AND "))
	buf.WriteString(" ORDER BY ar.work_date ASC, p.employee_code ASC")

	rows, err := s.db.QueryContext(ctx, buf.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var checkOut sql.NullTime
		var hours sql.NullFloat64
		if err := rows.Scan(&r.WorkDate, &r.EmployeeCode, &r.Name, &r.Department,
			&r.Status, &r.CheckInAt, &checkOut, &hours); err != nil {
			return nil, err
		}
		r.CheckInAt = r.CheckInAt.UTC()
		if checkOut.Valid {
			t := checkOut.Time.UTC()
			r.CheckOutAt = &t
		}
		if hours.Valid {
			v := hours.Float64
			r.TotalHours = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
